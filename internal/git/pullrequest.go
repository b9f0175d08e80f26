package git

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"github.com/mxcd/image-tag-updater/internal/configuration"
	"github.com/mxcd/image-tag-updater/internal/exec"
	"github.com/rs/zerolog/log"
)

// PullRequestOpener creates a pull request from the head branch into the base branch
type PullRequestOpener interface {
	OpenPullRequest(ctx context.Context, options *PullRequestOptions) error
}

// PullRequestOpenerFunc adapts a plain function to the PullRequestOpener interface
type PullRequestOpenerFunc func(ctx context.Context, options *PullRequestOptions) error

func (f PullRequestOpenerFunc) OpenPullRequest(ctx context.Context, options *PullRequestOptions) error {
	return f(ctx, options)
}

// NewPullRequestOpener returns the opener for the configured provider
func NewPullRequestOpener(config *configuration.Config, runner exec.Runner) (PullRequestOpener, error) {
	switch config.PullRequestProvider {
	case configuration.PullRequestProviderCLI, "":
		return NewCLIOpener(config.TargetPath, config.GitActor.Token, runner), nil
	case configuration.PullRequestProviderAPI:
		owner, repo, err := splitRepo(config.Remote.Repo)
		if err != nil {
			return nil, err
		}
		return NewAPIOpener(APIConfig{
			Owner:   owner,
			Repo:    repo,
			Token:   config.GitActor.Token,
			BaseURL: apiBaseURL(config.Remote.Host),
		})
	default:
		return nil, fmt.Errorf("unsupported pull request provider: %s", config.PullRequestProvider)
	}
}

func splitRepo(fullName string) (string, string, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("repository must be in owner/name form, got '%s'", fullName)
	}
	return owner, repo, nil
}

// apiBaseURL returns the REST endpoint for enterprise hosts, empty for github.com
func apiBaseURL(host string) string {
	if host == "" || host == "github.com" {
		return ""
	}
	return "https://" + host + "/api/v3/"
}

// CLIOpener creates pull requests with the gh command line tool
type CLIOpener struct {
	workingDirectory string
	token            string
	runner           exec.Runner
}

func NewCLIOpener(workingDirectory, token string, runner exec.Runner) *CLIOpener {
	return &CLIOpener{
		workingDirectory: workingDirectory,
		token:            token,
		runner:           runner,
	}
}

func (o *CLIOpener) OpenPullRequest(ctx context.Context, options *PullRequestOptions) error {
	_, err := o.runner.Run(ctx, exec.Command{
		Dir:     o.workingDirectory,
		Name:    "gh",
		Args:    []string{"auth", "login", "--with-token"},
		Stdin:   o.token,
		Secrets: []string{o.token},
	})
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ gh authentication failed, continuing")
	}

	_, err = o.runner.Run(ctx, exec.Command{
		Dir:  o.workingDirectory,
		Name: "gh",
		Args: []string{
			"pr", "create",
			"--base", options.BaseBranch,
			"--head", options.HeadBranch,
			"--title", options.Title,
			"--body", options.Body,
		},
		Secrets: []string{o.token},
	})
	if err != nil {
		return fmt.Errorf("failed to create pull request: %w", err)
	}

	return nil
}

// APIConfig holds the settings for creating pull requests through the GitHub REST API
type APIConfig struct {
	Owner string
	Repo  string
	Token string
	// BaseURL is the REST endpoint of a GitHub Enterprise server, empty for github.com
	BaseURL string
}

// APIOpener creates pull requests with the GitHub REST API
type APIOpener struct {
	client *gh.Client
	owner  string
	repo   string
}

func NewAPIOpener(cfg APIConfig) (*APIOpener, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("repository owner and name must be set")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("GitHub token is required for PR creation")
	}

	client := gh.NewClient(nil).WithAuthToken(cfg.Token)
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %s: %w", cfg.BaseURL, err)
		}
	}

	return &APIOpener{
		client: client,
		owner:  cfg.Owner,
		repo:   cfg.Repo,
	}, nil
}

// OpenPullRequest creates the pull request. An existing pull request for the same
// branches (HTTP 422) counts as success.
func (o *APIOpener) OpenPullRequest(ctx context.Context, options *PullRequestOptions) error {
	created, resp, err := o.client.PullRequests.Create(ctx, o.owner, o.repo, &gh.NewPullRequest{
		Title: gh.Ptr(options.Title),
		Head:  gh.Ptr(options.HeadBranch),
		Base:  gh.Ptr(options.BaseBranch),
		Body:  gh.Ptr(options.Body),
	})
	if err == nil {
		log.Info().Str("url", created.GetHTMLURL()).Int("number", created.GetNumber()).Msg("Created pull request")
		return nil
	}

	if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
		log.Info().Str("head", options.HeadBranch).Str("base", options.BaseBranch).Msg("Pull request already exists")
		return nil
	}

	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
		if body, readErr := io.ReadAll(resp.Body); readErr == nil && len(body) > 0 {
			log.Debug().Str("body", string(body)).Msg("GitHub response")
		}
	}

	return fmt.Errorf("failed to create pull request: %w", err)
}
