package api

import (
	"context"
	"net/http"
	"strings"
)

// SignIn exchanges credentials for a user record and bearer token. It does not
// persist anything; the session store owns persistence.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	var out SignInResponse
	err := c.Do(ctx, http.MethodPost, "/auth/signIn", RequestOptions{
		Body:     req,
		Fallback: "Sign in failed. Please try again.",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Data.Token == "" || out.Data.User == nil {
		return nil, &Error{Message: "Sign in failed. Please try again.", Status: http.StatusOK, Kind: KindDecode}
	}
	return &out, nil
}

// Logout invalidates the token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", RequestOptions{Fallback: "Sign out failed"}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/changePassword", RequestOptions{
		Body:     req,
		Fallback: "Failed to change password",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword asks the server to send a one-time code to email.
func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	var out MessageResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/forgotPassword", RequestOptions{
		Body:     req,
		Fallback: "Failed to send verification code",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP trades a one-time code for a short-lived reset token.
func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResponse, error) {
	var out VerifyOTPResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/verifyOTP", RequestOptions{
		Body:     req,
		Fallback: "Invalid verification code",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password, authorized by resetToken instead of the
// session token.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest, resetToken string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/resetPassword", RequestOptions{
		Body:     req,
		Token:    resetToken,
		Fallback: "Failed to reset password",
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile sends profile fields, as multipart when a picture is attached.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*SignInResponse, error) {
	opts := RequestOptions{Fallback: "Failed to update profile"}
	if req.Picture != nil {
		pic := *req.Picture
		if pic.Field == "" {
			pic.Field = "profilePicture"
		}
		opts.Fields = req.Fields
		opts.Files = []File{pic}
	} else {
		opts.Body = req.Fields
	}

	var out SignInResponse
	if err := c.Do(ctx, http.MethodPut, "/users/profile", opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
