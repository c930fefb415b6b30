package cli

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/linkkoy/internal/auth"
	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/repository"
)

type harness struct {
	t          *testing.T
	configPath string
	opened     []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("LK_BACKEND", "json")
	t.Setenv("LK_LOG_LEVEL", "error")

	h := &harness{t: t, configPath: filepath.Join(t.TempDir(), "config.json")}

	origTerminal, origOpen := isTerminal, openURL
	isTerminal = func(int) bool { return false }
	openURL = func(url string) error {
		h.opened = append(h.opened, url)
		return nil
	}
	t.Cleanup(func() {
		isTerminal, openURL = origTerminal, origOpen
	})
	return h
}

// run executes lk with args; stdin feeds the password prompt.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetArgs(append([]string{"--config", h.configPath}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	assert.NilError(h.t, err, "lk %s", strings.Join(args, " "))
	return out
}

var createdID = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

// id extracts the ID from "Created ... (ID)" output.
func (h *harness) id(out string) string {
	h.t.Helper()
	m := createdID.FindStringSubmatch(out)
	assert.Assert(h.t, m != nil, "no id in %q", out)
	return m[1]
}

func (h *harness) register(name, email string) {
	h.t.Helper()
	out, err := h.run("secret1\n", "register", "--name", name, "--email", email)
	assert.NilError(h.t, err)
	assert.Assert(h.t, is.Contains(out, "Registered and logged in as "+strings.ToLower(email)))
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("version")
	assert.Assert(t, is.Contains(out, "Version: test"))
}

func TestCommandsNeedLogin(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{
		{"folders"},
		{"whoami"},
		{"folder", "add", "Work"},
		{"search", "x"},
	} {
		_, err := h.run("", args...)
		assert.ErrorIs(t, err, errNotLoggedIn, "lk %s", strings.Join(args, " "))
	}
}

func TestAccountLifecycle(t *testing.T) {
	h := newHarness(t)
	h.register("Ada", "Ada@Example.com")

	out := h.mustRun("whoami")
	assert.Equal(t, out, "Ada <ada@example.com>\n")

	out = h.mustRun("logout")
	assert.Equal(t, out, "Logged out\n")
	_, err := h.run("", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, err = h.run("wrong-password\n", "login", "--email", "ada@example.com")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	out, err = h.run("secret1\n", "login", "--email", "ada@example.com")
	assert.NilError(t, err)
	assert.Equal(t, out, "Logged in as ada@example.com\n")

	_, err = h.run("secret1\n", "register", "--name", "Other", "--email", "ada@example.com")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("short\n", "register", "--name", "Ada", "--email", "ada@example.com")
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.ErrorContains(t, err, "at least 6 characters")
}

func TestFoldersAndLinks(t *testing.T) {
	h := newHarness(t)
	h.register("Ada", "ada@example.com")

	workID := h.id(h.mustRun("folder", "add", "Work", "--color", "#2196F3"))
	projectID := h.id(h.mustRun("folder", "add", "Project", "--parent", workID))
	h.mustRun("folder", "add", "Reading")

	out := h.mustRun("folders")
	assert.Assert(t, is.Contains(out, "Work/  "+workID+"\n  Project/  "+projectID+"\n"))
	assert.Assert(t, is.Contains(out, "Reading/"))

	docsID := h.id(h.mustRun("link", "add", projectID, "Docs", "https://docs.example.com"))
	out = h.mustRun("links", projectID)
	assert.Equal(t, out, "Docs  https://docs.example.com  "+docsID+"\n")

	out = h.mustRun("link", "edit", docsID, "--title", "Team Docs")
	assert.Equal(t, out, "Updated link \"Team Docs\"\n")

	out = h.mustRun("link", "mv", docsID, workID)
	assert.Equal(t, out, "Moved \"Team Docs\" to Work\n")
	assert.Equal(t, h.mustRun("links", projectID), "")
	assert.Assert(t, is.Contains(h.mustRun("links", workID), "Team Docs"))

	out = h.mustRun("folder", "edit", projectID, "--name", "Archive")
	assert.Equal(t, out, "Updated folder \"Archive\"\n")

	out = h.mustRun("search", "team")
	assert.Assert(t, is.Contains(out, "Team Docs  https://docs.example.com"))
	out = h.mustRun("search", "ARCH")
	assert.Assert(t, is.Contains(out, "Archive/  "+projectID))
	out = h.mustRun("search", "nothing-here")
	assert.Equal(t, out, "Nothing matches \"nothing-here\"\n")

	out = h.mustRun("folder", "rm", workID)
	assert.Equal(t, out, "Deleted folder \"Work\" and everything in it\n")
	out = h.mustRun("folders")
	assert.Assert(t, !strings.Contains(out, "Work/"))
	assert.Assert(t, !strings.Contains(out, "Archive/"))

	_, err := h.run("", "link", "rm", docsID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFolderAddValidation(t *testing.T) {
	h := newHarness(t)
	h.register("Ada", "ada@example.com")

	_, err := h.run("", "folder", "add", "   ")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = h.run("", "folder", "add", "Work", "--color", "blue")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = h.run("", "folder", "add", "Work", "--parent", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOtherUsersFoldersAreHidden(t *testing.T) {
	h := newHarness(t)
	h.register("Ada", "ada@example.com")
	adaFolder := h.id(h.mustRun("folder", "add", "Private"))

	h.mustRun("logout")
	h.register("Bob", "bob@example.com")

	assert.Equal(t, h.mustRun("folders"), "No folders yet. Add one with `lk folder add NAME`.\n")

	_, err := h.run("", "folder", "rm", adaFolder)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = h.run("", "links", adaFolder)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOpen(t *testing.T) {
	h := newHarness(t)
	h.register("Ada", "ada@example.com")
	work := h.id(h.mustRun("folder", "add", "Work"))
	h.mustRun("link", "add", work, "GitHub", "https://github.com")

	out := h.mustRun("open", "gthb")
	assert.Equal(t, out, "Opening: GitHub\n")
	assert.DeepEqual(t, h.opened, []string{"https://github.com"})

	out = h.mustRun("open", "zzz")
	assert.Equal(t, out, "No links match \"zzz\"\n")
}

func TestOpenAddsScheme(t *testing.T) {
	h := newHarness(t)
	h.register("Ada", "ada@example.com")
	work := h.id(h.mustRun("folder", "add", "Work"))
	h.mustRun("link", "add", work, "Docs", "docs.example.com")

	h.mustRun("open", "docs")
	assert.DeepEqual(t, h.opened, []string{"https://docs.example.com"})

	// The stored URL keeps what was typed.
	out := h.mustRun("links", work)
	assert.Assert(t, strings.Contains(out, "docs.example.com"))
	assert.Assert(t, !strings.Contains(out, "https://docs.example.com"))
}

const bookmarksHTML = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3>Development</H3>
    <DL><p>
        <DT><A HREF="https://go.dev">Go</A>
    </DL><p>
    <DT><A HREF="https://example.com">Loose</A>
</DL><p>
`

func TestImportExport(t *testing.T) {
	h := newHarness(t)
	h.register("Ada", "ada@example.com")

	src := filepath.Join(t.TempDir(), "bookmarks.html")
	assert.NilError(t, os.WriteFile(src, []byte(bookmarksHTML), 0644))

	out := h.mustRun("import", src)
	assert.Equal(t, out, "Imported 2 folders and 2 links\n")

	out = h.mustRun("folders")
	assert.Assert(t, is.Contains(out, "Development/"))
	assert.Assert(t, is.Contains(out, "Imported/"))

	dst := filepath.Join(t.TempDir(), "export.html")
	out = h.mustRun("export", dst)
	assert.Equal(t, out, "Exported to "+dst+"\n")

	data, err := os.ReadFile(dst)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(data), `<A HREF="https://go.dev">Go</A>`))
	assert.Assert(t, is.Contains(string(data), "<H3>Imported</H3>"))
}

func TestServeRejectsRemoteBackend(t *testing.T) {
	h := newHarness(t)
	t.Setenv("LK_BACKEND", "remote")
	t.Setenv("LK_REMOTE_URL", "http://127.0.0.1:1")

	_, err := h.run("", "serve")
	assert.Assert(t, err != nil)
	assert.ErrorContains(t, err, "local backend")
}

func TestPromptPasswordReadsLine(t *testing.T) {
	newHarness(t)

	cmd := NewRootCmd("test")
	cmd.SetIn(strings.NewReader("hunter22\r\n"))
	cmd.SetErr(&bytes.Buffer{})
	pw, err := promptPassword(cmd)
	assert.NilError(t, err)
	assert.Equal(t, pw, "hunter22")

	cmd.SetIn(strings.NewReader(""))
	_, err = promptPassword(cmd)
	assert.Assert(t, err != nil)
}

func TestTerminalPassword(t *testing.T) {
	newHarness(t)
	isTerminal = func(int) bool { return true }
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("from-tty"), nil }
	t.Cleanup(func() { readPassword = orig })

	cmd := NewRootCmd("test")
	cmd.SetErr(&bytes.Buffer{})
	pw, err := promptPassword(cmd)
	assert.NilError(t, err)
	assert.Equal(t, pw, "from-tty")

	readPassword = func(int) ([]byte, error) { return nil, errors.New("no tty") }
	_, err = promptPassword(cmd)
	assert.ErrorContains(t, err, "no tty")
}

func TestCull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
		}
	}))
	t.Cleanup(srv.Close)

	h := newHarness(t)
	h.register("Ada", "ada@example.com")

	assert.Equal(t, h.mustRun("cull"), "No links to check\n")

	work := h.id(h.mustRun("folder", "add", "Work"))
	h.mustRun("link", "add", work, "Alive", srv.URL+"/alive")
	h.mustRun("link", "add", work, "Gone", srv.URL+"/gone")

	out := h.mustRun("cull")
	assert.Assert(t, is.Contains(out, "dead         410  Gone  "+srv.URL+"/gone\n"))
	assert.Assert(t, is.Contains(out, "1 healthy, 1 dead, 0 unreachable\n"))
	assert.Equal(t, len(strings.Split(strings.TrimSpace(h.mustRun("links", work)), "\n")), 2)

	out = h.mustRun("cull", "--delete", "--concurrency", "2")
	assert.Assert(t, is.Contains(out, "Deleted 1 dead links\n"))
	assert.Assert(t, is.Contains(h.mustRun("links", work), "Alive"))
	assert.Assert(t, !strings.Contains(h.mustRun("links", work), "Gone"))
}
