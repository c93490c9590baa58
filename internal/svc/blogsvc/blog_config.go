package blogsvc

// BlogConfig contains configuration parameters for the post service.
type BlogConfig struct {
	// EnforceOwnership restricts edit and delete to the post owner.
	// Disabled, any logged-in user may edit or delete any post.
	EnforceOwnership bool `yaml:"enforce_ownership" env:"ENFORCE_OWNERSHIP" env-description:"only the owner may edit or delete a post"`
}
