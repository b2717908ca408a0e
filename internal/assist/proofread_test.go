package assist

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/cv-editor/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProofread_EchoIsNoSignal(t *testing.T) {
	echo := newFake("device", "  Managed the teem  ")
	fixer := newFake("proxy", "Here is the corrected text: Managed the team")

	o := New(nil, echo, fixer)
	got, err := o.Proofread(context.Background(), "Managed the teem", "en-US")

	require.NoError(t, err)
	assert.Equal(t, "Managed the team", got)
	assert.Equal(t, 1, echo.calls)
	assert.Equal(t, "en-US", fixer.requests[0].Locale)
	assert.Contains(t, fixer.requests[0].Instruction, "American English")
}

func TestProofread_AlreadyClean(t *testing.T) {
	echo := newFake("device", "Managed the team")

	o := New(nil, echo)
	_, err := o.Proofread(context.Background(), "Managed the team", "en-GB")

	var exhausted *NoAcceptableResultError
	require.True(t, errors.As(err, &exhausted))
	assert.True(t, exhausted.AlreadyClean())
	assert.Contains(t, exhausted.UserMessage(), "already looks right")
}

func TestProofread_EchoWithFailingTierIsNotClean(t *testing.T) {
	echo := newFake("device", "Managed the team")
	down := newFake("proxy", "")
	down.err = errors.New("proxy 502")

	_, err := New(nil, echo, down).Proofread(context.Background(), "Managed the team", "en-US")

	var exhausted *NoAcceptableResultError
	require.True(t, errors.As(err, &exhausted))
	assert.False(t, exhausted.AlreadyClean())
	assert.Equal(t, "Couldn't proofread right now. Your text was left unchanged.", exhausted.UserMessage())
}

func TestProofread_EchoWithSkippedTierIsClean(t *testing.T) {
	missing := newFake("device", "")
	missing.state = gateway.Unsupported
	echo := newFake("proxy", "Managed the team")

	_, err := New(nil, missing, echo).Proofread(context.Background(), "Managed the team", "en-US")

	var exhausted *NoAcceptableResultError
	require.True(t, errors.As(err, &exhausted))
	assert.True(t, exhausted.AlreadyClean())
	assert.Zero(t, missing.calls)
}

func TestAlreadyClean_OnlyForProofreading(t *testing.T) {
	echo := newFake("device", "Managed the team")

	_, err := New(nil, echo).RewriteBullets(context.Background(), []string{"Managed the team"}, OpExpand)

	var exhausted *NoAcceptableResultError
	require.True(t, errors.As(err, &exhausted))
	assert.ErrorIs(t, exhausted.Attempts[0].Err, ErrEcho)
	assert.False(t, exhausted.AlreadyClean())
	assert.Contains(t, exhausted.UserMessage(), "Couldn't")
}

func TestProofreadRoleSafe_RejectsSentenceExpansion(t *testing.T) {
	expander := newFake("device", "Developed and led a team of 5 engineers to improve throughput")
	proxy := newFake("proxy", "Backend Engineer.")

	o := New(nil, expander, proxy)
	_, err := o.ProofreadRoleSafe(context.Background(), "Backend Engineer", "en-US")

	var exhausted *NoAcceptableResultError
	require.True(t, errors.As(err, &exhausted), "falling back to the current role counts as an echo")
	require.Len(t, exhausted.Attempts, 2)
	assert.ErrorIs(t, exhausted.Attempts[0].Err, ErrEcho)
}

func TestProofreadRoleSafe_AcceptsShortCorrection(t *testing.T) {
	proxy := newFake("proxy", "Backend Engineer. I fixed the typo.")

	o := New(nil, proxy)
	got, err := o.ProofreadRoleSafe(context.Background(), "Backend Enginer", "en-US")

	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got)
}

func TestProofreadTitleSafe(t *testing.T) {
	proxy := newFake("proxy", "Senior Software Engineer")

	got, err := New(nil, proxy).ProofreadTitleSafe(context.Background(), "Senior Sofware Engineer", "en-US")
	require.NoError(t, err)
	assert.Equal(t, "Senior Software Engineer", got)
}

func TestProofreadBulletsSafe(t *testing.T) {
	proxy := newFake("proxy", "- Reduced latency by 40%.\n- Mentored four engineers.")

	got, err := New(nil, proxy).ProofreadBulletsSafe(context.Background(),
		[]string{"Reduced latncy by 40%", "Mentored four enginers"}, "en-US")

	require.NoError(t, err)
	assert.Equal(t, []string{"Reduced latency by 40%", "Mentored four engineers"}, got)
}

func TestProofread_EmptyInput(t *testing.T) {
	o := New(nil)
	_, err := o.Proofread(context.Background(), "  ", "en")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = o.ProofreadBulletsSafe(context.Background(), []string{""}, "en")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
