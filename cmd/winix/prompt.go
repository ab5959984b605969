package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptCredentials fills in whichever of username and password was not given
// on the command line. The password is read with echo disabled when stdin is
// a terminal.
func promptCredentials(stdin io.Reader, prompts io.Writer, username, password string) (string, string, error) {
	reader := bufio.NewReader(stdin)

	if username == "" {
		fmt.Fprint(prompts, "Username (email): ")
		line, err := readLine(reader)
		if err != nil {
			return "", "", fmt.Errorf("reading username: %w", err)
		}
		username = line
	}

	if password == "" {
		fmt.Fprint(prompts, "Password: ")
		if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(prompts)
			if err != nil {
				return "", "", fmt.Errorf("reading password: %w", err)
			}
			password = string(b)
		} else {
			line, err := readLine(reader)
			if err != nil {
				return "", "", fmt.Errorf("reading password: %w", err)
			}
			password = line
		}
	}

	if username == "" || password == "" {
		return "", "", errors.New("username and password are required")
	}
	return username, password, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
