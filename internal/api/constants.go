package api

// Route prefix and OpenAPI identifiers.
const (
	apiPrefix = "/api"

	apiTitle = "NoteKeeper API"

	// bearerScheme names the OpenAPI security scheme for PASETO session tokens.
	bearerScheme = "bearer"
)

// Tags group operations in the generated docs.
var (
	tagsAuth     = []string{"Authentication"}
	tagsBooks    = []string{"Books"}
	tagsChapters = []string{"Chapters"}
	tagsNotes    = []string{"Notes"}
	tagsTags     = []string{"Tags"}
	tagsSystem   = []string{"System"}
)

// bearerSecurity marks an operation as requiring a session token.
var bearerSecurity = []map[string][]string{{bearerScheme: {}}}
