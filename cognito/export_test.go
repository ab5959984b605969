package cognito

// ServerBVector exposes the SRP_B test vector to the external test package.
const ServerBVector = testServerB
