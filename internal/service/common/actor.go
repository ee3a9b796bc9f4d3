//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"fmt"
	"os"
	"os/user"

	"google.golang.org/grpc/metadata"

	api "github.com/oshokin/radio-bridge/internal/api/grpc/channel"
)

// Actor identifies who issued a call, for the daemon logs.
type Actor struct {
	// Hostname is the caller machine name.
	Hostname string
	// Username is the caller account name.
	Username string
}

// String formats the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return ""
	}

	return a.Username + "@" + a.Hostname
}

// DetectActor gathers host and user information of the current process.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}

// outgoing attaches the actor to the outgoing call metadata.
func (a *Actor) outgoing(ctx context.Context) context.Context {
	if a == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx,
		api.MetadataHostname, a.Hostname,
		api.MetadataUsername, a.Username)
}
