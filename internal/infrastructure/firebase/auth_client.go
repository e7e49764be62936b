package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// FirebaseAuthClient wraps the Firebase identity provider for the health
// surface. Request authentication goes through the echo middleware; this
// adapter only probes that the credentials still work.
type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	// Cheap call that exercises credentials without mutating anything.
	_, err := f.client.GetUsers(ctx, []auth.UserIdentifier{auth.UIDIdentifier{UID: "health-check-probe"}})
	return err
}
