package profile

// ProfileBody is the writable part of a profile. Fields are checked by the
// shared validation rules rather than schema constraints so both the client
// and the API report the same messages.
type ProfileBody struct {
	ID    string `json:"id,omitempty" required:"false" doc:"Ignored on create; must match the path on update"`
	Name  string `json:"name"         required:"false" doc:"Display name, at least 3 characters" example:"John Doe"`
	Email string `json:"email"        required:"false" doc:"Email address"                       example:"john@example.com"`
	Age   string `json:"age"          required:"false" doc:"Age between 11 and 99, may be empty" example:"30"`
}

// ProfileListInput for GET /profile (no parameters)
type ProfileListInput struct{}

// ProfileGetInput for GET /profile/{id}
type ProfileGetInput struct {
	ID string `path:"id" doc:"Profile ID"`
}

// ProfileCreateInput for POST /profile
type ProfileCreateInput struct {
	Body ProfileBody
}

// ProfileUpdateInput for PUT /profile/{id}
type ProfileUpdateInput struct {
	ID   string `path:"id" doc:"Profile ID"`
	Body ProfileBody
}
