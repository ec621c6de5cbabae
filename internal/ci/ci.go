// Package ci describes where a deployment was started from.
package ci

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
)

// CI represents the origin of a deployment: a CI pipeline or a local git checkout.
type CI struct {
	Provider  Provider `json:"provider"`
	OriginURL string   `json:"originURL,omitempty"`
	Repo      string   `json:"repo,omitempty"`
	RefName   string   `json:"refName,omitempty"` // branch
	SHA       string   `json:"sha,omitempty"`
	User      string   `json:"user,omitempty"`
}

// Provider represents a CI Provider.
type Provider struct {
	// Name of the Provider.
	Name string `json:"name"`

	// The environment variable by which the Provider is detected.
	Envar string `json:"-"`
}

var (
	// AppVeyor represents https://www.appveyor.com/
	AppVeyor = Provider{Name: "AppVeyor", Envar: "APPVEYOR_BUILD_NUMBER"}
	// AWS represents https://aws.amazon.com/codebuild/
	AWS = Provider{Name: "AWS CodeBuild", Envar: "CODEBUILD_INITIATOR"}
	// Azure represents https://azure.microsoft.com/en-us/services/devops/
	Azure = Provider{Name: "Azure DevOps", Envar: "Agent_BuildDirectory"}
	// Bitbucket represents https://bitbucket.org/product/features/pipelines
	Bitbucket = Provider{Name: "Bitbucket", Envar: "BITBUCKET_BUILD_NUMBER"}
	// Circle represents https://circleci.com/
	Circle = Provider{Name: "CircleCI", Envar: "CIRCLECI"}
	// Drone represents https://www.drone.io/
	Drone = Provider{Name: "Drone", Envar: "DRONE_BUILD_NUMBER"}
	// GitHub represents https://github.com/
	GitHub = Provider{Name: "GitHub", Envar: "GITHUB_RUN_ID"}
	// GitLab represents https://about.gitlab.com/
	GitLab = Provider{Name: "GitLab", Envar: "CI_PIPELINE_ID"}
	// Jenkins represents https://www.jenkins.io/
	Jenkins = Provider{Name: "Jenkins", Envar: "BUILD_NUMBER"}
	// Travis represents https://www.travis-ci.com/
	Travis = Provider{Name: "Travis CI", Envar: "TRAVIS_BUILD_ID"}

	// Local represents a deployment started from a git checkout outside of CI.
	Local = Provider{Name: "local"}

	// None represents an unknown origin.
	None = Provider{}
)

// Providers contains a list of all supported providers.
var Providers = []Provider{
	AppVeyor,
	AWS,
	Azure,
	Bitbucket,
	Circle,
	Drone,
	GitHub,
	GitLab,
	Jenkins,
	Travis,
}

// GetProvider returns a CI Provider if this code is executed in a known CI environment.
// Returns None if it's not a CI environment or if the CI Provider could not be detected.
func GetProvider() Provider {
	for _, p := range Providers {
		_, ok := os.LookupEnv(p.Envar)
		if ok {
			return p
		}
	}

	return None
}

// Detect returns the origin of the current deployment. Outside of a known CI environment, the git repository
// containing dir is inspected instead. The zero CI is returned if neither applies.
func Detect(dir string) CI {
	if p := GetProvider(); p != None {
		return getCI(p)
	}
	return fromGit(dir)
}

func getCI(provider Provider) CI {
	ci := CI{Provider: provider}

	switch provider {
	case AppVeyor:
		ci.OriginURL = os.Getenv("APPVEYOR_URL")
		ci.Repo = os.Getenv("APPVEYOR_REPO_NAME")
		ci.RefName = os.Getenv("APPVEYOR_REPO_BRANCH")
		ci.SHA = os.Getenv("APPVEYOR_REPO_COMMIT")
		ci.User = os.Getenv("APPVEYOR_REPO_COMMIT_AUTHOR")
	case AWS:
		ci.OriginURL = os.Getenv("CODEBUILD_PUBLIC_BUILD_URL")
		ci.Repo = os.Getenv("CODEBUILD_SOURCE_REPO_URL")
		ci.RefName = os.Getenv("CODEBUILD_SOURCE_VERSION")
		ci.SHA = os.Getenv("CODEBUILD_RESOLVED_SOURCE_VERSION")
		ci.User = os.Getenv("CODEBUILD_WEBHOOK_ACTOR_ACCOUNT_ID")
	case GitHub:
		ci.OriginURL = fmt.Sprintf("%s/%s/actions/runs/%s", os.Getenv("GITHUB_SERVER_URL"), os.Getenv("GITHUB_REPOSITORY"), os.Getenv("GITHUB_RUN_ID"))
		ci.Repo = os.Getenv("GITHUB_REPOSITORY")
		ci.RefName = os.Getenv("GITHUB_REF_NAME")
		ci.SHA = os.Getenv("GITHUB_SHA")
		ci.User = os.Getenv("GITHUB_ACTOR")
	case GitLab:
		ci.OriginURL = os.Getenv("CI_JOB_URL")
		ci.Repo = os.Getenv("CI_PROJECT_PATH")
		ci.RefName = os.Getenv("CI_COMMIT_REF_NAME")
		ci.SHA = os.Getenv("CI_COMMIT_SHA")
		ci.User = os.Getenv("GITLAB_USER_LOGIN")
	case Jenkins:
		ci.OriginURL = os.Getenv("BUILD_URL")
		ci.Repo = os.Getenv("GIT_URL")
		ci.RefName = os.Getenv("GIT_BRANCH")
		ci.SHA = os.Getenv("GIT_COMMIT")
	}

	return ci
}

func fromGit(dir string) CI {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return CI{}
	}

	head, err := repo.Head()
	if err != nil {
		return CI{}
	}

	ci := CI{Provider: Local, SHA: head.Hash().String()}
	if head.Name().IsBranch() {
		ci.RefName = head.Name().Short()
	}
	if remote, err := repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		ci.Repo = remote.Config().URLs[0]
	}

	return ci
}

// String returns a one-line description, e.g. "GitHub main@1a2b3c4 by octocat".
func (c CI) String() string {
	if c.Provider == None {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(c.Provider.Name)

	ref := c.RefName
	if sha := c.SHA; sha != "" {
		if len(sha) > 7 {
			sha = sha[:7]
		}
		if ref != "" {
			ref += "@"
		}
		ref += sha
	}
	if ref != "" {
		sb.WriteString(" " + ref)
	}
	if c.User != "" {
		sb.WriteString(" by " + c.User)
	}

	return sb.String()
}
