package dating_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestModuleDependencies_StoragePresent(t *testing.T) {
	testModulePresence(t, "gorm.io/gorm")
	testModulePresence(t, "gorm.io/driver/postgres")
	testModulePresence(t, "github.com/glebarez/sqlite")
}

func TestModuleDependencies_ObservabilityPresent(t *testing.T) {
	testModulePresence(t, "github.com/simp-lee/logger")
	testModulePresence(t, "github.com/prometheus/client_golang")
	testModulePresence(t, "github.com/google/uuid")
}

func TestModuleDependencies_ConfigPresent(t *testing.T) {
	testModulePresence(t, "github.com/knadh/koanf/v2")
	testModulePresence(t, "github.com/joho/godotenv")
}

func TestModuleDependencies_XCryptoPresent(t *testing.T) {
	testModulePresence(t, "golang.org/x/crypto")
}

func TestModuleDependencies_TestToolingPresent(t *testing.T) {
	testModulePresence(t, "github.com/stretchr/testify")
	testModulePresence(t, "github.com/DATA-DOG/go-sqlmock")
}

// Page parameters must be read through pkg.ParsePage so every listing
// rejects non-positive values the same way.
func TestPaginationAPI_NoAdHocPageParsing(t *testing.T) {
	t.Run("happy_repo_has_no_ad_hoc_parsing", func(t *testing.T) {
		matches, err := findAdHocPageParsing(".")
		if err != nil {
			t.Fatalf("scan repository: %v", err)
		}
		if len(matches) != 0 {
			t.Fatalf("expected page params to be parsed by pkg.ParsePage only, found in: %v", matches)
		}
	})

	t.Run("error_fixture_with_ad_hoc_parsing_is_detected", func(t *testing.T) {
		fixture := `package user
func list(c *gin.Context) { n := c.DefaultQuery("pageNumber", "1") }`
		if !hasAdHocPageParsing(fixture) {
			t.Fatal("expected ad hoc page parsing to be detected in fixture")
		}
	})
}

func testModulePresence(t *testing.T, module string) {
	t.Helper()

	t.Run(module+"/happy_present_in_real_go_mod", func(t *testing.T) {
		goMod, err := os.ReadFile("go.mod")
		if err != nil {
			t.Fatalf("read go.mod: %v", err)
		}
		if !moduleRequired(string(goMod), module) {
			t.Fatalf("expected module %q to be present in go.mod", module)
		}
	})

	t.Run(module+"/error_missing_module_in_fixture", func(t *testing.T) {
		fixture := `module example.com/demo

go 1.25.0

require (
	github.com/gin-gonic/gin v1.11.0
)`
		if moduleRequired(fixture, module) {
			t.Fatalf("expected fixture to not contain module %q", module)
		}
	})
}

func moduleRequired(goModContent, module string) bool {
	re := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(module) + `\s+v\S+`)
	return re.MatchString(goModContent)
}

func findAdHocPageParsing(root string) ([]string, error) {
	matches := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			if name == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		if filepath.ToSlash(path) == "internal/pkg/pagination.go" {
			return nil
		}
		b, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		if hasAdHocPageParsing(string(b)) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func hasAdHocPageParsing(content string) bool {
	re := regexp.MustCompile(`\.(Default)?(Get)?Query\(\s*"page(Number|Size)"`)
	return re.MatchString(content)
}
