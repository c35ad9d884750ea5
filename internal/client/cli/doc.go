// Package cli provides the interactive resourcehub command-line client.
//
// It wires configuration, the local session database, the identity client
// and an interactive REPL. Typical flow: restore the persisted session, keep
// it fresh in the background, and execute user commands.
//
// Commands:
//   - signup: create an account with a security question
//   - login / logout / whoami
//   - forgot: reset a password by answering the security question
//   - avatar [file]: print a presigned upload URL for the profile picture,
//     or upload file to it
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
