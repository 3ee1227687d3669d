package api

import (
	"context"
	"fmt"

	"github.com/lehigh-university-libraries/pustak/internal/models"
)

type ProfileUpdate struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	ProfilePhoto string `json:"profile_photo"`
}

// UpdateProfile saves the profile form and returns the user as the server now sees it.
func (c *Client) UpdateProfile(ctx context.Context, id int64, in ProfileUpdate) (models.User, error) {
	var user models.User
	if err := c.do(ctx, "PUT", fmt.Sprintf("/profile/%d", id), nil, in, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}
