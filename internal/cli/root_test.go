package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpmf/NexxtTask/internal/config"
	"github.com/mpmf/NexxtTask/internal/credential"
)

type harness struct {
	t          *testing.T
	configPath string
	ring       keyring.Keyring
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
env: prod
database:
  driver: sqlite
  dsn: `+filepath.Join(dir, "tasks.db")+`
auth:
  signing_key: test-signing-key
client:
  fingerprint: cli:test
`), 0o600))

	return &harness{t: t, configPath: configPath, ring: keyring.NewArrayKeyring(nil)}
}

// run executes one invocation with a fresh command tree, like a new process.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	root := NewRootCommand(Options{
		OpenKeyring: func(string) (*credential.Keyring, error) {
			return credential.New(h.ring), nil
		},
		LogOutput: io.Discard,
	})

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", h.configPath}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "nexxttask %s", strings.Join(args, " "))
	return out
}

// lastField returns the last word of the first output line.
func lastField(out string) string {
	line, _, _ := strings.Cut(out, "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func (h *harness) signUp(email, name string) {
	h.t.Helper()
	h.mustRun("signup", "--email", email, "--name", name, "--password", "correct horse")
}

func TestCLI_RequiresSignIn(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("task", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestCLI_SessionLifecycle(t *testing.T) {
	h := newHarness(t)
	h.signUp("ada@example.com", "Ada Lovelace")

	out := h.mustRun("whoami")
	assert.Contains(t, out, "Ada Lovelace <ada@example.com>")

	h.mustRun("signout")
	_, err := h.run("whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")

	_, err = h.run("signin", "--email", "ada@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "invalid e-mail or password", err.Error())

	h.mustRun("signin", "--email", "ADA@example.com", "--password", "correct horse")
	out = h.mustRun("whoami")
	assert.Contains(t, out, "ada@example.com")
}

// lockedRing is a keyring whose writes always fail.
type lockedRing struct {
	keyring.Keyring
}

func (lockedRing) Set(keyring.Item) error { return errors.New("keyring is locked") }

func TestCLI_ReportsUnsavedSession(t *testing.T) {
	h := newHarness(t)
	h.ring = lockedRing{Keyring: h.ring}

	_, err := h.run("signup", "--email", "ada@example.com", "--name", "Ada Lovelace", "--password", "correct horse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storing session")
	assert.Contains(t, err.Error(), "keyring is locked")

	_, err = h.run("whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestCLI_RefreshesExpiredAccessToken(t *testing.T) {
	h := newHarness(t)
	h.signUp("ada@example.com", "Ada Lovelace")

	before, err := credential.New(h.ring).LoadSession()
	require.NoError(t, err)

	timeNow = func() time.Time { return time.Now().Add(time.Hour) }
	defer func() { timeNow = time.Now }()

	h.mustRun("whoami")

	after, err := credential.New(h.ring).LoadSession()
	require.NoError(t, err)
	assert.NotEqual(t, before.RefreshToken, after.RefreshToken)
}

func TestCLI_TaskWorkflow(t *testing.T) {
	h := newHarness(t)
	h.signUp("grace@example.com", "Grace Hopper")
	h.signUp("ada@example.com", "Ada Lovelace")

	taskID := lastField(h.mustRun("task", "create",
		"--title", "Release 1.2",
		"--description", "ship it",
		"--checklist", "Before=freeze, changelog",
		"--tag", "release",
		"--assign", "grace@example.com"))
	require.NotEmpty(t, taskID)

	out := h.mustRun("task", "list")
	assert.Contains(t, out, "Release 1.2")
	assert.Contains(t, out, taskID)
	assert.Contains(t, out, "Page 1 of 1 (1 tasks)")

	out = h.mustRun("task", "show", taskID)
	assert.Contains(t, out, "Before")
	assert.Contains(t, out, "freeze")
	assert.Contains(t, out, "#release")
	assert.Contains(t, out, "Assigned: Grace Hopper")

	checklistID := lastField(h.mustRun("checklist", "add", taskID, "After"))
	itemID := lastField(h.mustRun("item", "add", checklistID, "announce"))

	out = h.mustRun("item", "toggle", itemID)
	assert.Equal(t, "Item "+itemID+" checked\n", out)
	assert.Equal(t, "33%\n", h.mustRun("task", "progress", taskID))

	h.mustRun("item", "edit", itemID, "--content", "announce on the blog")
	out = h.mustRun("task", "show", taskID)
	assert.Contains(t, out, "announce on the blog")

	h.mustRun("tag", "add", taskID, "infra")
	out = h.mustRun("tag", "list")
	assert.Contains(t, out, "#infra")
	assert.Contains(t, out, "#release")

	out = h.mustRun("task", "list", "--tag", "infra")
	assert.Contains(t, out, taskID)
	h.mustRun("tag", "remove", taskID, "infra")
	out = h.mustRun("task", "list", "--tag", "infra")
	assert.Contains(t, out, "No tasks.")

	h.mustRun("task", "status", taskID, "completed")
	out = h.mustRun("task", "list")
	assert.Contains(t, out, "No tasks.")
	out = h.mustRun("task", "list", "--archived")
	assert.Contains(t, out, taskID)

	h.mustRun("task", "delete", taskID)
	_, err := h.run("task", "show", taskID)
	assert.Error(t, err)
}

func TestCLI_AssigneeSeesTask(t *testing.T) {
	h := newHarness(t)
	h.signUp("grace@example.com", "Grace Hopper")
	h.signUp("ada@example.com", "Ada Lovelace")

	taskID := lastField(h.mustRun("task", "create", "--title", "Pair on review"))
	h.mustRun("assign", taskID, "grace@example.com")

	h.mustRun("signin", "--email", "grace@example.com", "--password", "correct horse")
	out := h.mustRun("task", "list")
	assert.Contains(t, out, "Pair on review")

	_, err := h.run("task", "delete", taskID)
	assert.Error(t, err)

	h.mustRun("signin", "--email", "ada@example.com", "--password", "correct horse")
	h.mustRun("unassign", taskID, "grace@example.com")

	h.mustRun("signin", "--email", "grace@example.com", "--password", "correct horse")
	out = h.mustRun("task", "list")
	assert.Contains(t, out, "No tasks.")
}

func TestCLI_Migrate(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("migrate")
	assert.Regexp(t, `^Schema is at version [1-9]\d* \(sqlite\)\n$`, out)
}

func TestCLI_ConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	root := func(args ...string) error {
		cmd := NewRootCommand(Options{LogOutput: io.Discard})
		cmd.SetOut(io.Discard)
		cmd.SetArgs(append([]string{"--config", path}, args...))
		return cmd.Execute()
	}

	require.NoError(t, root("config", "init"))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Auth.SigningKey, 64)
	require.NoError(t, cfg.Validate())

	assert.Error(t, root("config", "init"))
	require.NoError(t, root("config", "init", "--force"))

	again, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.NotEqual(t, cfg.Auth.SigningKey, again.Auth.SigningKey)
}

func TestParseChecklist(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		n    int
	}{
		{name: "title and items", in: "Before=freeze,changelog", want: "Before", n: 2},
		{name: "blank items dropped", in: " Later = a, ,b,", want: "Later", n: 2},
		{name: "title only", in: "Notes", want: "Notes", n: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := parseChecklist(tt.in)
			assert.Equal(t, tt.want, cl.Title)
			assert.Len(t, cl.Items, tt.n)
		})
	}
}
