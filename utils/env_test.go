package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvDefaults(t *testing.T) {
	t.Setenv("UTILS_TEST_INT", "not-a-number")
	t.Setenv("UTILS_TEST_DURATION", "90s")
	t.Setenv("UTILS_TEST_BOOL", "false")

	assert.Equal(t, "fallback", Env("UTILS_TEST_MISSING", "fallback"))
	assert.Equal(t, 7, EnvInt("UTILS_TEST_INT", 7))
	assert.Equal(t, 90*time.Second, EnvDuration("UTILS_TEST_DURATION", time.Minute))
	assert.False(t, EnvBool("UTILS_TEST_BOOL", true))
}

func TestEnvList(t *testing.T) {
	t.Setenv("UTILS_TEST_LIST", " Run, Walk ,,TrailRun ")
	assert.Equal(t, []string{"Run", "Walk", "TrailRun"}, EnvList("UTILS_TEST_LIST", ""))

	empty := EnvList("UTILS_TEST_LIST_MISSING", "")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
