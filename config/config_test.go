package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "APP_DEBUG", "GRADEBOOK_SUBJECTS", "GRADEBOOK_PASS_MARK",
		"GRADEBOOK_DISTINCTION_MARK", "GRADEBOOK_RANKING_TOP", "ROSTER_PATH",
		"LOG_LEVEL", "LOG_FORMAT", "EVENTS_ASYNC", "EVENTS_WORKERS",
		"EVENTS_REDIS_URL", "EVENTS_REDIS_CHANNEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gradebook", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"Math", "English", "Science"}, cfg.Gradebook.Subjects)
	assert.Equal(t, 50.0, cfg.Gradebook.PassMark)
	assert.Equal(t, 70.0, cfg.Gradebook.DistinctionMark)
	assert.Equal(t, 10, cfg.Gradebook.RankingTop)
	assert.Empty(t, cfg.Roster.Path)
	assert.False(t, cfg.Events.Async)
	assert.Empty(t, cfg.Events.RedisURL)
	assert.Equal(t, "gradebook:events", cfg.Events.RedisChannel)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
	assert.Equal(t, "text", cfg.Observability.LogFormat)
	assert.NotNil(t, cfg.Features)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("GRADEBOOK_SUBJECTS", " History, Art ,,Music ")
	t.Setenv("GRADEBOOK_PASS_MARK", "40")
	t.Setenv("GRADEBOOK_DISTINCTION_MARK", "85.5")
	t.Setenv("GRADEBOOK_RANKING_TOP", "3")
	t.Setenv("ROSTER_PATH", " class.xlsx ")
	t.Setenv("EVENTS_ASYNC", "true")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"History", "Art", "Music"}, cfg.Gradebook.Subjects)
	assert.Equal(t, 40.0, cfg.Gradebook.PassMark)
	assert.Equal(t, 85.5, cfg.Gradebook.DistinctionMark)
	assert.Equal(t, 3, cfg.Gradebook.RankingTop)
	assert.Equal(t, "class.xlsx", cfg.Roster.Path)
	assert.True(t, cfg.Events.Async)
	assert.Equal(t, "json", cfg.Observability.LogFormat, "production defaults to json")
}

func TestLoad_MalformedMark(t *testing.T) {
	t.Setenv("GRADEBOOK_PASS_MARK", "fifty")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GRADEBOOK_PASS_MARK")
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := &Config{
		Gradebook: GradebookConfig{
			PassMark:        80,
			DistinctionMark: 120,
			RankingTop:      0,
		},
		Events:        EventsConfig{Workers: 1, JournalSize: 1, RedisURL: "localhost:6379"},
		Observability: ObservabilityConfig{LogFormat: "xml"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "GRADEBOOK_SUBJECTS")
	assert.Contains(t, msg, "GRADEBOOK_DISTINCTION_MARK must be 0-100")
	assert.Contains(t, msg, "GRADEBOOK_RANKING_TOP")
	assert.Contains(t, msg, "LOG_FORMAT")
	assert.Contains(t, msg, "EVENTS_REDIS_URL")
	assert.NotContains(t, msg, "EVENTS_WORKERS")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GRADEBOOK_TEST_DOTENV=loaded\n"), 0o600))

	t.Setenv("GRADEBOOK_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("GRADEBOOK_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("GRADEBOOK_TEST_DOTENV"))
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestFeatureFlags(t *testing.T) {
	t.Setenv("FEATURE_SHELL_RANKING", "false")
	t.Setenv("FEATURE_SHELL_DIAGNOSTICS", "true")

	ff := LoadFeatureFlags()
	assert.True(t, ff.IsEnabled(FeatureShellRosterImport))
	assert.True(t, ff.IsEnabled(FeatureShellStatistics))
	assert.False(t, ff.IsEnabled(FeatureShellRanking))
	assert.True(t, ff.IsEnabled(FeatureShellDiagnostics))
	assert.False(t, ff.IsEnabled("shell.unknown"))

	require.NoError(t, ff.EnableFeature(FeatureShellRanking))
	assert.True(t, ff.IsEnabled(FeatureShellRanking))
	assert.ErrorIs(t, ff.DisableFeature("shell.unknown"), ErrFeatureNotFound)

	all := ff.GetAllFeatures()
	require.Len(t, all, 4)
	assert.Equal(t, FeatureShellDiagnostics, all[0].Name)

	var nilFlags *FeatureFlags
	assert.True(t, nilFlags.IsEnabled(FeatureShellRanking))
}

func TestFeatureNameToEnvKey(t *testing.T) {
	assert.Equal(t, "FEATURE_SHELL_ROSTER_IMPORT", featureNameToEnvKey(FeatureShellRosterImport))
}
