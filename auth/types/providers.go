package types

const (
	GoogleProvider = "google"
	GithubProvider = "github"
)

// ProviderListing is one entry of the GET /oauth/provider?list= response.
type ProviderListing struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}
