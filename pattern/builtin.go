package pattern

// Names of the built-in patterns seeded into every defaults registry.
const (
	// OpenAIKey matches OpenAI API keys such as "sk-..." project keys.
	OpenAIKey = "openai_key"
	// AnthropicKey matches Anthropic API keys with the "sk-ant-" prefix.
	AnthropicKey = "anthropic_key"
	// GitHubToken matches classic GitHub personal access tokens.
	GitHubToken = "github_token"
	// FilePath matches the user home directory prefix of absolute paths.
	FilePath = "file_path"
	// DatabaseURL matches database connection strings.
	DatabaseURL = "database_url"
)

// Builtins returns the built-in patterns. Each call returns fresh values so
// callers cannot corrupt another registry's seed set.
//
// The file_path pattern deliberately masks only the home directory segment
// ("/Users/alice" or "/home/alice") so the rest of the path survives
// sanitization: "/Users/alice/notes.txt" becomes "/{USER_HOME}/notes.txt".
func Builtins() []Pattern {
	return []Pattern{
		MustCompile(OpenAIKey, `sk-[A-Za-z0-9]{32,}`, "{{OPENAI_API_KEY}}").
			Describe("OpenAI API keys"),
		MustCompile(AnthropicKey, `sk-ant-[A-Za-z0-9]{90,}`, "{{ANTHROPIC_API_KEY}}").
			Describe("Anthropic API keys"),
		MustCompile(GitHubToken, `ghp_[A-Za-z0-9]{36}`, "{{GITHUB_TOKEN}}").
			Describe("GitHub personal access tokens"),
		MustCompile(FilePath, `/(?:Users|home)/[^/\s]+`, "/{USER_HOME}").
			Describe("user home directories in absolute paths"),
		MustCompile(DatabaseURL, `(?:postgresql|postgres|mysql|sqlite|redis|mongodb)://[^\s]+`, "{{DATABASE_URL}}").
			Describe("database connection URLs with embedded credentials"),
	}
}
