package runner

import (
	"errors"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// ErrNoPackageManager means no known manifest was found in the working
// directory.
var ErrNoPackageManager = errors.New("no supported package manager detected")

// DetectCommands inspects the working directory for a known manifest and
// returns the install/build/test commands of its package manager. Lockfiles
// take precedence over the default manager within an ecosystem.
func (it *BuildRunner) DetectCommands(workDir string) (entities.BuildCommands, error) {
	switch {
	case fileExists(workDir, "package.json"):
		return detectNodeCommands(workDir), nil
	case fileExists(workDir, "pyproject.toml") && fileExists(workDir, "poetry.lock"):
		return entities.BuildCommands{
			PackageManager: "poetry",
			Install:        "poetry install",
			Test:           "poetry run pytest",
		}, nil
	case fileExists(workDir, "Pipfile"):
		return entities.BuildCommands{
			PackageManager: "pipenv",
			Install:        "pipenv install --dev",
			Test:           "pipenv run pytest",
		}, nil
	case fileExists(workDir, "requirements.txt") || fileExists(workDir, "pyproject.toml"):
		return entities.BuildCommands{
			PackageManager: "pip",
			Install:        "pip install -r requirements.txt",
			Test:           "pytest",
		}, nil
	case fileExists(workDir, "Cargo.toml"):
		return entities.BuildCommands{
			PackageManager: "cargo",
			Install:        "cargo fetch",
			Build:          "cargo build",
			Test:           "cargo test",
		}, nil
	case fileExists(workDir, "go.mod"):
		return entities.BuildCommands{
			PackageManager: "go",
			Install:        "go mod download",
			Build:          "go build ./...",
			Test:           "go test ./...",
		}, nil
	}

	logger.Warnf("No supported manifest found in '%s'", workDir)
	return entities.BuildCommands{}, ErrNoPackageManager
}

func detectNodeCommands(workDir string) entities.BuildCommands {
	switch {
	case fileExists(workDir, "yarn.lock"):
		return entities.BuildCommands{
			PackageManager: "yarn",
			Install:        "yarn install --frozen-lockfile",
			Build:          "yarn build",
			Test:           "yarn test",
		}
	case fileExists(workDir, "pnpm-lock.yaml"):
		return entities.BuildCommands{
			PackageManager: "pnpm",
			Install:        "pnpm install --frozen-lockfile",
			Build:          "pnpm build",
			Test:           "pnpm test",
		}
	default:
		return entities.BuildCommands{
			PackageManager: "npm",
			Install:        "npm install",
			Build:          "npm run build --if-present",
			Test:           "npm test",
		}
	}
}

func fileExists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
