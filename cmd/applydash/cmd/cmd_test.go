package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nfrund/applydash/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine answers the workflow webhooks and records request bodies by path.
type fakeEngine struct {
	mu     sync.Mutex
	bodies map[string][]byte
	fail   map[string]bool
}

func newFakeEngine(t *testing.T) (*fakeEngine, *httptest.Server) {
	t.Helper()
	fe := &fakeEngine{bodies: map[string][]byte{}, fail: map[string]bool{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)

		fe.mu.Lock()
		fe.bodies[path] = buf.Bytes()
		failing := fe.fail[path]
		fe.mu.Unlock()

		if failing {
			http.Error(w, "workflow crashed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch path {
		case domain.EndpointGetStats.Kebab():
			_, _ = w.Write([]byte(`{"totalApplications":1234,"activeCampaigns":2,"responseRate":12.5,"interviews":3}`))
		case domain.EndpointGetCampaigns.Kebab():
			_, _ = w.Write([]byte(`[{"name":"Acme Backend","status":"active","applied":10,"responses":2,"interviews":1,"progress":140}]`))
		case domain.EndpointGetApplications.Kebab():
			_, _ = w.Write([]byte(`[{"jobTitle":"Go Engineer","company":"Initech","location":"Remote","appliedDate":"2024-03-01T00:00:00Z","status":"applied"}]`))
		case domain.EndpointFindJobs.Kebab():
			_, _ = w.Write([]byte(`{"count":7}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)
	return fe, srv
}

func (fe *fakeEngine) body(key domain.EndpointKey) []byte {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bodies[key.Kebab()]
}

func run(t *testing.T, env map[string]string, fs afero.Fs, args ...string) (string, string, error) {
	t.Helper()
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	root := NewRootCmd(WithEnv(func(k string) string { return env[k] }), WithFs(fs))
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, nil, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "applydash v"+version+"\n", out)
}

func TestEndpoints(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/applydash/endpoints.yaml",
		[]byte("endpoints:\n  getStats: http://stats.test/custom\n"), 0o644))
	env := map[string]string{
		"WEBHOOK_BASE_URL":      "http://engine.test/webhook",
		"ENDPOINTS_FILE":        "/etc/applydash/endpoints.yaml",
		"WEBHOOK_GET_CAMPAIGNS": "http://override.test/campaigns",
	}

	out, _, err := run(t, env, fs, "endpoints")
	require.NoError(t, err)
	assert.Contains(t, out, "http://stats.test/custom")
	assert.Contains(t, out, "http://engine.test/webhook/find-jobs")
	assert.Contains(t, out, "http://override.test/campaigns")
	for _, source := range []string{"file", "env", "default"} {
		assert.Contains(t, out, source)
	}
}

func TestRefresh_PrintsEveryRegion(t *testing.T) {
	_, srv := newFakeEngine(t)
	env := map[string]string{"WEBHOOK_BASE_URL": srv.URL, "APP_LOCALE": "en-US"}

	out, _, err := run(t, env, nil, "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "12.5%")
	assert.Contains(t, out, "Acme Backend")
	assert.Contains(t, out, "100%", "progress is clamped")
	assert.Contains(t, out, "Initech")
}

func TestRefresh_Policies(t *testing.T) {
	fe, srv := newFakeEngine(t)
	fe.fail[domain.EndpointGetStats.Kebab()] = true
	env := map[string]string{"WEBHOOK_BASE_URL": srv.URL}

	t.Run("isolated shows the healthy regions", func(t *testing.T) {
		out, stderr, err := run(t, env, nil, "--policy", "isolated", "refresh")
		require.Error(t, err)
		assert.Contains(t, out, "Acme Backend")
		assert.Contains(t, out, "stats: unavailable")
		assert.Contains(t, stderr, "[error]")
	})

	t.Run("all-or-nothing shows nothing", func(t *testing.T) {
		out, _, err := run(t, env, nil, "--policy", "all-or-nothing", "refresh")
		require.Error(t, err)
		assert.NotContains(t, out, "Acme Backend")
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, _, err := run(t, env, nil, "--policy", "sometimes", "refresh")
		require.Error(t, err)
	})
}

func TestTrigger_FindJobs(t *testing.T) {
	fe, srv := newFakeEngine(t)
	env := map[string]string{"WEBHOOK_BASE_URL": srv.URL}

	out, _, err := run(t, env, nil, "trigger", "find-jobs",
		"--job-title", "Go Engineer", "--location", "Remote", "--platforms", "linkedin, indeed")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 7 jobs")

	var payload domain.FindJobsRequest
	require.NoError(t, json.Unmarshal(fe.body(domain.EndpointFindJobs), &payload))
	assert.Equal(t, []string{"linkedin", "indeed"}, payload.Platforms)
}

func TestTrigger_CreateCampaignRefreshesCampaigns(t *testing.T) {
	_, srv := newFakeEngine(t)
	env := map[string]string{"WEBHOOK_BASE_URL": srv.URL}

	out, _, err := run(t, env, nil, "trigger", "create-campaign",
		"--campaign-name", "Spring", "--job-title", "Go Engineer", "--platforms", "linkedin")
	require.NoError(t, err)
	assert.Contains(t, out, "Campaign created successfully!")
	assert.Contains(t, out, "Acme Backend")
}

func TestTrigger_MissingInputAborts(t *testing.T) {
	fe, srv := newFakeEngine(t)
	env := map[string]string{"WEBHOOK_BASE_URL": srv.URL}

	_, _, err := run(t, env, nil, "trigger", "create-campaign", "--campaign-name", "Spring")
	require.ErrorIs(t, err, domain.ErrActionAborted)
	assert.Nil(t, fe.body(domain.EndpointCreateCampaign))
}

func TestTrigger_UploadDetectsContentType(t *testing.T) {
	fe, srv := newFakeEngine(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/me/resume.pdf", []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n"), 0o644))
	env := map[string]string{"WEBHOOK_BASE_URL": srv.URL}

	out, _, err := run(t, env, fs, "trigger", "upload-resume", "--file", "/home/me/resume.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "Resume uploaded successfully!")

	var payload domain.UploadResumeRequest
	require.NoError(t, json.Unmarshal(fe.body(domain.EndpointUploadResume), &payload))
	assert.Equal(t, "resume.pdf", payload.Filename)
	assert.Equal(t, "application/pdf", payload.FileType)
	assert.NotEmpty(t, payload.FileData)
}

func TestTrigger_UnknownAction(t *testing.T) {
	_, _, err := run(t, nil, nil, "trigger", "teleport")
	require.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestTrigger_OpenSettings(t *testing.T) {
	env := map[string]string{"WEBHOOK_BASE_URL": "http://engine.test/webhook"}
	out, _, err := run(t, env, nil, "trigger", "open-settings")
	require.NoError(t, err)
	assert.Contains(t, out, "http://engine.test/webhook/get-stats")
}
