package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/stockfolio/internal/types"
)

type userBody struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserBody(u types.User) userBody {
	return userBody{ID: u.ID, Username: u.Username, Email: u.Email}
}

func registerAuthHandlers(api huma.API, users AuthService) {
	type registerInput struct {
		Body struct {
			Username string `json:"username" required:"true"`
			Email    string `json:"email" required:"true"`
			Password string `json:"password" required:"true"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "register", Method: http.MethodPost, Path: "/api/auth/register", Summary: "Register a user", Tags: []string{"Auth"}, DefaultStatus: http.StatusCreated},
		func(ctx context.Context, input *registerInput) (*messageOutput, error) {
			if _, err := users.Register(ctx, input.Body.Username, input.Body.Email, input.Body.Password); err != nil {
				return nil, mapErr(err)
			}
			return message("User registered successfully"), nil
		})

	type loginInput struct {
		Body struct {
			Email    string `json:"email" required:"true"`
			Password string `json:"password" required:"true"`
		}
	}
	type loginOutput struct {
		Body struct {
			Token string   `json:"token"`
			User  userBody `json:"user"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "login", Method: http.MethodPost, Path: "/api/auth/login", Summary: "Log in and receive a bearer token", Tags: []string{"Auth"}},
		func(ctx context.Context, input *loginInput) (*loginOutput, error) {
			sess, err := users.Login(ctx, input.Body.Email, input.Body.Password)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &loginOutput{}
			out.Body.Token = sess.Token
			out.Body.User = toUserBody(sess.User)
			return out, nil
		})
}

// authorizeOwner resolves the bearer token and checks that it belongs to userID.
func authorizeOwner(ctx context.Context, users AuthService, header string, userID int64) error {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return types.Errorf(types.CodeUnauthorized, "missing bearer token")
	}
	user, err := users.Authenticate(ctx, strings.TrimSpace(token))
	if err != nil {
		return err
	}
	if user.ID != userID {
		return types.Errorf(types.CodeForbidden, "unauthorized access")
	}
	return nil
}
