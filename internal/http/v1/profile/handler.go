package profile

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/profile-sync/internal/platform/respond"
	"github.com/janisto/profile-sync/internal/platform/timeutil"
	"github.com/janisto/profile-sync/internal/profile"
	profilesvc "github.com/janisto/profile-sync/internal/service/profile"
	"github.com/janisto/profile-sync/internal/validation"
)

const (
	MsgCreated = "Profile created successfully!"
	MsgUpdated = "Profile updated successfully!"
)

// Register registers profile endpoints under prefix.
func Register(api huma.API, svc profilesvc.Service, prefix string) {
	huma.Register(api, huma.Operation{
		OperationID: "list-profiles",
		Method:      http.MethodGet,
		Path:        "/profile",
		Summary:     "List profiles",
		Description: "Returns every profile, oldest first.",
		Tags:        []string{"Profile"},
	}, func(ctx context.Context, _ *ProfileListInput) (*ProfileListOutput, error) {
		profiles, err := svc.List(ctx)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		out := make([]Profile, 0, len(profiles))
		for i := range profiles {
			out = append(out, toHTTPProfile(&profiles[i]))
		}
		return &ProfileListOutput{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/profile/{id}",
		Summary:     "Get profile",
		Description: "Retrieves one profile by ID.",
		Tags:        []string{"Profile"},
	}, func(ctx context.Context, input *ProfileGetInput) (*ProfileGetOutput, error) {
		p, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileGetOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-profile",
		Method:        http.MethodPost,
		Path:          "/profile",
		Summary:       "Create profile",
		Description:   "Creates a profile. Any id in the body is ignored.",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *ProfileCreateInput) (*ProfileCreateOutput, error) {
		if err := validateBody(ctx, input.Body); err != nil {
			return nil, err
		}
		p, err := svc.Create(ctx, toParams(input.Body))
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileCreateOutput{
			Location: prefix + "/profile/" + url.PathEscape(p.ID),
			Body:     SavedProfile{Profile: toHTTPProfile(p), Message: MsgCreated},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPut,
		Path:        "/profile/{id}",
		Summary:     "Update profile",
		Description: "Replaces the name, email and age of a profile.",
		Tags:        []string{"Profile"},
	}, func(ctx context.Context, input *ProfileUpdateInput) (*ProfileUpdateOutput, error) {
		if input.Body.ID != "" && input.Body.ID != input.ID {
			return nil, respond.Error(ctx, http.StatusUnprocessableEntity, "id in body does not match path",
				[]respond.Detail{{Field: "body.id", Message: "must match path id", Value: input.Body.ID}})
		}
		if err := validateBody(ctx, input.Body); err != nil {
			return nil, err
		}
		p, err := svc.Update(ctx, input.ID, toParams(input.Body))
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileUpdateOutput{
			Body: SavedProfile{Profile: toHTTPProfile(p), Message: MsgUpdated},
		}, nil
	})
}

// validateBody applies the same rules the client form uses. The message joins
// every violation so clients that only read "message" still see them all.
func validateBody(ctx context.Context, body ProfileBody) error {
	violations := validation.Validate(profile.Profile{Name: body.Name, Email: body.Email, Age: body.Age})
	if violations.Empty() {
		return nil
	}
	fields := violations.Fields()
	details := make([]respond.Detail, 0, len(fields))
	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		details = append(details, respond.Detail{Field: "body." + f, Message: violations[f]})
		messages = append(messages, violations[f])
	}
	return respond.Error(ctx, http.StatusUnprocessableEntity, strings.Join(messages, "; "), details)
}

func mapServiceError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, profilesvc.ErrNotFound):
		return respond.Error(ctx, http.StatusNotFound, "Profile not found", nil)
	default:
		return respond.Error(ctx, http.StatusInternalServerError, "internal error", nil, err)
	}
}

func toParams(body ProfileBody) profilesvc.Params {
	return profilesvc.Params{Name: body.Name, Email: body.Email, Age: body.Age}
}

func toHTTPProfile(p *profilesvc.Profile) Profile {
	return Profile{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Age:       p.Age,
		CreatedAt: timeutil.From(p.CreatedAt),
		UpdatedAt: timeutil.From(p.UpdatedAt),
	}
}
