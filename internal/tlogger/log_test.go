package tlogger

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "info")
	t.Cleanup(func() { SetOutput(os.Stdout, "info") })

	Debug("msg", "hidden")
	Info("msg", "Selected voices", "platform", "android")
	Error("msg", "boom", "err", errors.New("x"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, `msg="Selected voices"`)
	assert.Contains(t, out, "platform=android")
	assert.Contains(t, out, "app=voicestage")
	assert.Contains(t, out, "caller=log_test.go:")
	assert.Contains(t, out, "level=error")
}

func TestSetOutput_Debug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")
	t.Cleanup(func() { SetOutput(os.Stdout, "info") })

	Debug("msg", "shown")
	assert.Contains(t, buf.String(), "msg=shown")
}
