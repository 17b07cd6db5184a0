// AngelaMos | 2026
// dto.go

package profile

import "github.com/caffeinepub/engineer-notes-shop/internal/actor"

type SaveProfileRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type ProfileResponse struct {
	Name string `json:"name"`
}

// MeResponse distinguishes "no profile yet" from an error: a signed-in
// caller without a saved profile is a valid state that prompts setup.
type MeResponse struct {
	Profile *ProfileResponse `json:"profile"`
	Exists  bool             `json:"exists"`
}

type RoleResponse struct {
	Role string `json:"role"`
}

type PrincipalProfileResponse struct {
	Principal string          `json:"principal"`
	Profile   ProfileResponse `json:"profile"`
}

func ToProfileResponse(p *actor.UserProfile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{Name: p.Name}
}

func ToMeResponse(p *actor.UserProfile) MeResponse {
	return MeResponse{
		Profile: ToProfileResponse(p),
		Exists:  p != nil,
	}
}

func ToPrincipalProfileList(
	entries []actor.PrincipalProfile,
) []PrincipalProfileResponse {
	responses := make([]PrincipalProfileResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, PrincipalProfileResponse{
			Principal: e.Principal,
			Profile:   ProfileResponse{Name: e.Profile.Name},
		})
	}
	return responses
}
