package cognitofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/winix/sessions"
)

// FakeClient is an in-memory stand-in for cognito.Client.
type FakeClient struct {
	LoginSession   *sessions.Session
	LoginErr       error
	RefreshSession *sessions.Session
	RefreshErr     error

	Logins    []string // usernames passed to Login
	Refreshes []string // refresh tokens passed to Refresh
	lock      sync.Mutex
}

func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

func (c *FakeClient) Login(_ context.Context, username, _ string) (*sessions.Session, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.Logins = append(c.Logins, username)
	if c.LoginErr != nil {
		return nil, c.LoginErr
	}
	s := *c.LoginSession
	return &s, nil
}

func (c *FakeClient) Refresh(_ context.Context, userID, refreshToken string) (*sessions.Session, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.Refreshes = append(c.Refreshes, refreshToken)
	if c.RefreshErr != nil {
		return nil, c.RefreshErr
	}
	s := *c.RefreshSession
	s.UserID = userID
	return &s, nil
}

// Calls returns the total number of Login and Refresh calls.
func (c *FakeClient) Calls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.Logins) + len(c.Refreshes)
}
