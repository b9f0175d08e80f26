package git_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/mxcd/image-tag-updater/internal/exec/exectest"
	"github.com/mxcd/image-tag-updater/internal/git"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePullRequest() *git.PullRequestOptions {
	return &git.PullRequestOptions{
		Title:      "Automated PR by Github Action: Merging update/my-app into main",
		Body:       "This PR was created by Github Action for change image to deploy new version",
		BaseBranch: "main",
		HeadBranch: "update/my-app",
	}
}

func TestCLIOpener(t *testing.T) {
	t.Parallel()

	fake := exectest.NewRunner()
	opener := git.NewCLIOpener("/work/deploy", "ghp_secret", fake)

	require.NoError(t, opener.OpenPullRequest(context.Background(), samplePullRequest()))

	calls := fake.Calls()
	require.Len(t, calls, 2)

	assert.Equal(t, "gh", calls[0].Name)
	assert.Equal(t, []string{"auth", "login", "--with-token"}, calls[0].Args)
	assert.Equal(t, "ghp_secret", calls[0].Stdin)

	assert.Equal(t, []string{
		"pr", "create",
		"--base", "main",
		"--head", "update/my-app",
		"--title", "Automated PR by Github Action: Merging update/my-app into main",
		"--body", "This PR was created by Github Action for change image to deploy new version",
	}, calls[1].Args)
	assert.Equal(t, "/work/deploy", calls[1].Dir)
}

func TestCLIOpener_auth_failure_is_tolerated(t *testing.T) {
	t.Parallel()

	fake := exectest.NewRunner().On("gh auth login", exectest.Result{Err: errors.New("exit status 1")})
	opener := git.NewCLIOpener("/work/deploy", "ghp_secret", fake)

	require.NoError(t, opener.OpenPullRequest(context.Background(), samplePullRequest()))
	assert.Equal(t, 1, fake.Count("gh pr create"))
}

func TestCLIOpener_create_failure_is_fatal(t *testing.T) {
	t.Parallel()

	fake := exectest.NewRunner().On("gh pr create", exectest.Result{Stderr: "already exists", Err: errors.New("exit status 1")})
	opener := git.NewCLIOpener("/work/deploy", "ghp_secret", fake)

	err := opener.OpenPullRequest(context.Background(), samplePullRequest())

	assert.ErrorContains(t, err, "failed to create pull request")
	assert.ErrorContains(t, err, "already exists")
}

func newAPIServer(t *testing.T, status int, requests *[]map[string]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/repos/acme/deployments/pulls") {
			http.NotFound(w, r)
			return
		}
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		payload["authorization"] = r.Header.Get("Authorization")
		*requests = append(*requests, payload)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusCreated {
			_, _ = w.Write([]byte(`{"number": 7, "html_url": "https://github.com/acme/deployments/pull/7"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message": "Validation Failed"}`))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestAPIOpener(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"created", http.StatusCreated, false},
		{"already exists", http.StatusUnprocessableEntity, false},
		{"forbidden", http.StatusForbidden, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var requests []map[string]string
			server := newAPIServer(t, tt.status, &requests)

			opener, err := git.NewAPIOpener(git.APIConfig{
				Owner:   "acme",
				Repo:    "deployments",
				Token:   "ghp_secret",
				BaseURL: server.URL + "/",
			})
			require.NoError(t, err)

			err = opener.OpenPullRequest(context.Background(), samplePullRequest())

			if tt.wantErr {
				assert.ErrorContains(t, err, "failed to create pull request")
			} else {
				require.NoError(t, err)
			}

			require.Len(t, requests, 1)
			assert.Equal(t, "update/my-app", requests[0]["head"])
			assert.Equal(t, "main", requests[0]["base"])
			assert.Equal(t, "Bearer ghp_secret", requests[0]["authorization"])
		})
	}
}

func TestNewAPIOpener_validation(t *testing.T) {
	t.Parallel()

	_, err := git.NewAPIOpener(git.APIConfig{Owner: "acme", Repo: "deployments"})
	assert.ErrorContains(t, err, "token")

	_, err = git.NewAPIOpener(git.APIConfig{Token: "ghp_secret"})
	assert.ErrorContains(t, err, "owner")
}

func TestNewPullRequestOpener(t *testing.T) {
	t.Parallel()

	config := sampleConfig()
	config.GitActor = &configuration.GitActor{Token: "ghp_secret"}
	config.Remote = &configuration.Remote{Repo: "acme/deployments", Host: "github.com"}

	config.PullRequestProvider = configuration.PullRequestProviderCLI
	opener, err := git.NewPullRequestOpener(config, exectest.NewRunner())
	require.NoError(t, err)
	assert.IsType(t, &git.CLIOpener{}, opener)

	config.PullRequestProvider = configuration.PullRequestProviderAPI
	opener, err = git.NewPullRequestOpener(config, exectest.NewRunner())
	require.NoError(t, err)
	assert.IsType(t, &git.APIOpener{}, opener)

	config.Remote.Repo = "deployments"
	_, err = git.NewPullRequestOpener(config, exectest.NewRunner())
	assert.ErrorContains(t, err, "owner/name")

	config.PullRequestProvider = "gitlab"
	_, err = git.NewPullRequestOpener(config, exectest.NewRunner())
	assert.ErrorContains(t, err, "unsupported pull request provider")
}

func TestPullRequestOpenerFunc(t *testing.T) {
	t.Parallel()

	var got *git.PullRequestOptions
	opener := git.PullRequestOpenerFunc(func(_ context.Context, options *git.PullRequestOptions) error {
		got = options
		return nil
	})

	require.NoError(t, opener.OpenPullRequest(context.Background(), samplePullRequest()))
	assert.Equal(t, "update/my-app", got.HeadBranch)
}
