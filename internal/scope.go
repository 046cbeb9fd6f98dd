package internal

import (
	"os"
	"path/filepath"
)

const (
	ProjectConfigName = ".bookrag.yaml"
	DotEnvName        = ".env"
)

type ScopeType string

const (
	ScopeNone    ScopeType = ""
	ScopeGlobal  ScopeType = "global"
	ScopeProject ScopeType = "project"
	ScopeFlag    ScopeType = "flag"
)

// Scope is where the effective config file was found.
type Scope struct {
	Type       ScopeType
	ConfigPath string
}

type ScopeResolver struct {
	homeDir string
	workDir string
}

func NewScopeResolver() *ScopeResolver {
	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()
	return &ScopeResolver{homeDir: home, workDir: wd}
}

// NewScopeResolverAt resolves relative to the given home and working
// directories instead of the process ones.
func NewScopeResolverAt(homeDir, workDir string) *ScopeResolver {
	return &ScopeResolver{homeDir: homeDir, workDir: workDir}
}

func (r *ScopeResolver) Global() (Scope, bool) {
	if r.homeDir == "" {
		return Scope{}, false
	}
	path := filepath.Join(r.homeDir, ".config", "bookrag", "config.yaml")
	if !isFile(path) {
		return Scope{}, false
	}
	return Scope{Type: ScopeGlobal, ConfigPath: path}, true
}

func (r *ScopeResolver) Project() (Scope, bool) {
	if r.workDir == "" {
		return Scope{}, false
	}
	dir := r.workDir
	for {
		path := filepath.Join(dir, ProjectConfigName)
		if isFile(path) {
			return Scope{Type: ScopeProject, ConfigPath: path}, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Scope{}, false
		}
		dir = parent
	}
}

// Resolve prefers an explicit path, then the nearest project file, then the
// global file. Scope{} means defaults only.
func (r *ScopeResolver) Resolve(explicit string) Scope {
	if explicit != "" {
		return Scope{Type: ScopeFlag, ConfigPath: explicit}
	}
	if scope, ok := r.Project(); ok {
		return scope
	}
	if scope, ok := r.Global(); ok {
		return scope
	}
	return Scope{}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
