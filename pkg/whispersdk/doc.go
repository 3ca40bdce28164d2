/*
Package whispersdk is a Go client for the whisper messaging service.

# SDKClient vs Session

The package is organized around two types:

  - SDKClient: public endpoints (health, JWKS) and the two ways of obtaining a session
  - Session: everything that needs a bearer token

Create an SDKClient, then register or log in to get a Session:

	client := whispersdk.NewSDKClient("https://whisper.example.com")

	session, err := client.Login(ctx, "alice", "secret")
	if err != nil {
		return err
	}

	sent, err := session.SendMessage(ctx, "bob", "hello")
	inbox, err := session.Inbox(ctx)

Session tokens do not expire. A token stays valid until Session.Logout
revokes it or the server's signing key changes, so a token can be stored
and turned back into a session later:

	session := client.NewSession("alice", storedToken)

# Errors

Every non-2xx response is returned as an *APIError carrying the HTTP status,
the machine readable code and the description sent by the server:

	_, err := session.GetMessage(ctx, 42)
	if whispersdk.IsCode(err, whispersdk.ErrorCodeNotFound) {
		// the message does not exist or is not ours to read
	}

The server uses the same type to write its error responses, so the wire
format cannot drift between the two.
*/
package whispersdk
