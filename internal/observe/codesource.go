package observe

import (
	"os/exec"
	"strings"

	"github.com/Recurse-ML/logfire-example/internal/config"
)

const defaultRepository = "https://github.com/Recurse-ML/logfire-example"

// ResolveCodeSource determines the repository URL and revision for alert
// events. Explicit config values (GIT_REPO_URL, GIT_COMMIT) win; otherwise
// git is asked directly, which works in dev checkouts but not in containers
// built from a tarball.
func ResolveCodeSource(cfg *config.Config) CodeSource {
	src := CodeSource{Repository: cfg.GitRepoURL, Revision: cfg.GitCommit}
	if src.Repository == "" {
		src.Repository = gitOutput("remote", "get-url", "origin")
	}
	if src.Repository == "" {
		src.Repository = defaultRepository
	}
	if src.Revision == "" {
		src.Revision = gitOutput("rev-parse", "HEAD")
	}
	if src.Revision == "" {
		src.Revision = "unknown"
	}
	return src
}

func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
