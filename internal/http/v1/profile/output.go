package profile

// ProfileListOutput for GET /profile
type ProfileListOutput struct {
	Body []Profile
}

// ProfileGetOutput for GET /profile/{id}
type ProfileGetOutput struct {
	Body Profile
}

// ProfileCreateOutput for POST /profile (201 Created)
type ProfileCreateOutput struct {
	Location string `header:"Location" doc:"URL of created profile"`
	Body     SavedProfile
}

// ProfileUpdateOutput for PUT /profile/{id}
type ProfileUpdateOutput struct {
	Body SavedProfile
}
