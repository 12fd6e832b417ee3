package kanban

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/corkboard/corkboard/internal/keys"
	"github.com/corkboard/corkboard/store"
)

// CreateUserInput carries the identity-provider profile for a new user.
type CreateUserInput struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// CreateUser writes a user metadata item. Calling it again for the same uid
// overwrites the profile, which is how profile refreshes from the identity
// provider are applied.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	now := s.timestamp()
	k := keys.User(in.UID)
	user := &User{
		PK:         k.PK,
		SK:         k.SK,
		UID:        in.UID,
		Email:      in.Email,
		Name:       in.Name,
		Picture:    in.Picture,
		EntityType: TypeUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.putRecord(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns the user metadata for a uid.
func (s *Service) GetUser(ctx context.Context, uid string) (*User, error) {
	var user User
	if err := s.getRecord(ctx, keys.User(uid), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail resolves a user through EmailIndex. Email is globally
// unique, so the first match is the user.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	items, err := s.store.Query(ctx, store.QueryInput{
		IndexName:    keys.EmailIndex,
		KeyCondition: "email = :email",
		Values: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, store.ErrNotFound
	}
	var user User
	if err := attributevalue.UnmarshalMap(items[0], &user); err != nil {
		return nil, err
	}
	return &user, nil
}
