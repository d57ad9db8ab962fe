package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/printwatch/internal/notify"
)

// scriptedInspector replays a fixed sequence of observations. An entry with
// err set simulates an unreachable print service.
type scriptedInspector struct {
	script []observation
	pos    int
}

type observation struct {
	jobs int
	err  error
}

func (s *scriptedInspector) ActiveJobs(context.Context) (int, error) {
	if s.pos >= len(s.script) {
		return 0, nil
	}
	obs := s.script[s.pos]
	s.pos++
	return obs.jobs, obs.err
}

type recordingSwitch struct {
	actions       []string
	activateErr   error
	deactivateErr error
}

func (r *recordingSwitch) Activate(context.Context) error {
	if r.activateErr != nil {
		return r.activateErr
	}
	r.actions = append(r.actions, "activate")
	return nil
}

func (r *recordingSwitch) Deactivate(context.Context) error {
	if r.deactivateErr != nil {
		return r.deactivateErr
	}
	r.actions = append(r.actions, "deactivate")
	return nil
}

func (r *recordingSwitch) Close() error { return nil }

type recordingNotifier struct {
	events []notify.Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, e notify.Event) error {
	r.events = append(r.events, e)
	return r.err
}

// harness steps a controller through poll cycles with a manual clock, one
// interval per observation.
type harness struct {
	ctrl     *Controller
	clock    time.Time
	interval time.Duration
}

func newHarness(script []observation, sw *recordingSwitch, n notify.Notifier, interval, idle time.Duration) *harness {
	h := &harness{
		ctrl:     New(&scriptedInspector{script: script}, sw, n, idle),
		clock:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		interval: interval,
	}
	h.ctrl.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) tick() {
	h.ctrl.Tick(context.Background())
	h.clock = h.clock.Add(h.interval)
}

func (h *harness) run(cycles int) {
	for i := 0; i < cycles; i++ {
		h.tick()
	}
}

func TestActivatesOnFirstCycleWithJobs(t *testing.T) {
	sw := &recordingSwitch{}
	h := newHarness([]observation{{jobs: 0}, {jobs: 0}, {jobs: 2}}, sw, nil, time.Second, time.Minute)

	h.run(2)
	require.Empty(t, sw.actions, "no jobs yet, switch must stay untouched")
	require.False(t, h.ctrl.PowerOn())

	h.tick()
	require.Equal(t, []string{"activate"}, sw.actions)
	require.True(t, h.ctrl.PowerOn())
}

func TestStaysOnWhileJobsKeepArriving(t *testing.T) {
	sw := &recordingSwitch{}
	h := newHarness([]observation{{jobs: 1}, {jobs: 3}, {jobs: 1}, {jobs: 2}}, sw, nil, time.Second, 2*time.Second)

	h.run(4)
	require.Equal(t, []string{"activate"}, sw.actions, "activate must fire exactly once while jobs continue")
	require.True(t, h.ctrl.PowerOn())
}

func TestScenarioShortJobWithCoveringTimeout(t *testing.T) {
	// Sequence [0,0,1,0,0] with an idle timeout covering two cycles:
	// activate fires at cycle 3 and power stays on through cycle 5.
	sw := &recordingSwitch{}
	h := newHarness(
		[]observation{{jobs: 0}, {jobs: 0}, {jobs: 1}, {jobs: 0}, {jobs: 0}},
		sw, nil, time.Second, 2500*time.Millisecond)

	h.run(3)
	require.Equal(t, []string{"activate"}, sw.actions)

	h.run(2)
	require.Equal(t, []string{"activate"}, sw.actions, "timeout has not elapsed by cycle 5")
	require.True(t, h.ctrl.PowerOn())
}

func TestScenarioSingleDeactivateAfterIdleTimeout(t *testing.T) {
	// One job, then a long run of idle polls: exactly one deactivate, at the
	// first cycle where elapsed idle time reaches the timeout.
	script := []observation{{jobs: 1}}
	for i := 0; i < 8; i++ {
		script = append(script, observation{jobs: 0})
	}

	sw := &recordingSwitch{}
	h := newHarness(script, sw, nil, time.Second, 3*time.Second)

	// Cycle 1: activate, lastActive = t0. Cycles 2..3 at t0+1s, t0+2s: idle
	// below timeout. Cycle 4 at t0+3s: idle == timeout, deactivate.
	h.run(3)
	require.Equal(t, []string{"activate"}, sw.actions)

	h.tick()
	require.Equal(t, []string{"activate", "deactivate"}, sw.actions)
	require.False(t, h.ctrl.PowerOn())

	h.run(5)
	require.Equal(t, []string{"activate", "deactivate"}, sw.actions,
		"further idle cycles must not deactivate again")
}

func TestInspectorErrorLeavesStateUntouched(t *testing.T) {
	sw := &recordingSwitch{}
	n := &recordingNotifier{}
	h := newHarness(
		[]observation{{jobs: 1}, {err: errors.New("cups unreachable")}, {jobs: 0}, {jobs: 0}, {jobs: 0}},
		sw, n, time.Second, 10*time.Second)

	h.run(2)
	require.True(t, h.ctrl.PowerOn(), "a probe failure must not be read as an empty queue")
	require.Equal(t, []string{"activate"}, sw.actions)
	require.Len(t, n.events, 1)
	require.Equal(t, "queue", n.events[0].Source)

	// Polling resumes; the error cycle neither refreshed nor reset idleness.
	h.run(3)
	require.True(t, h.ctrl.PowerOn())
}

func TestInspectorErrorDoesNotStartPower(t *testing.T) {
	sw := &recordingSwitch{}
	h := newHarness([]observation{{err: errors.New("timeout")}}, sw, nil, time.Second, time.Minute)

	h.tick()
	require.Empty(t, sw.actions)
	require.False(t, h.ctrl.PowerOn())

	snap := h.ctrl.GetSnapshot()
	require.Equal(t, uint64(1), snap.PollErrors)
	require.Contains(t, snap.LastError, "timeout")
}

func TestActivateFailureRetriesNextCycle(t *testing.T) {
	sw := &recordingSwitch{activateErr: errors.New("line busy")}
	n := &recordingNotifier{}
	h := newHarness([]observation{{jobs: 1}, {jobs: 1}}, sw, n, time.Second, time.Minute)

	h.tick()
	require.False(t, h.ctrl.PowerOn(), "recorded state must not flip when the switch fails")
	require.Len(t, n.events, 1)
	require.Equal(t, "power", n.events[0].Source)

	sw.activateErr = nil
	h.tick()
	require.Equal(t, []string{"activate"}, sw.actions)
	require.True(t, h.ctrl.PowerOn())
}

func TestDeactivateFailureKeepsStateOn(t *testing.T) {
	sw := &recordingSwitch{}
	h := newHarness([]observation{{jobs: 1}, {jobs: 0}, {jobs: 0}}, sw, nil, time.Second, time.Second)

	h.run(1)
	sw.deactivateErr = errors.New("line busy")
	h.tick()
	require.True(t, h.ctrl.PowerOn())

	sw.deactivateErr = nil
	h.tick()
	require.False(t, h.ctrl.PowerOn())
	require.Equal(t, []string{"activate", "deactivate"}, sw.actions)
}

func TestNotifierFailureIsSwallowed(t *testing.T) {
	sw := &recordingSwitch{}
	n := &recordingNotifier{err: errors.New("hook down")}
	h := newHarness(
		[]observation{{err: errors.New("cups unreachable")}, {jobs: 1}},
		sw, n, time.Second, time.Minute)

	h.run(2)
	require.True(t, h.ctrl.PowerOn(), "a failing notifier must not stop the loop")
	require.Len(t, n.events, 1)
}

func TestSetIdleTimeoutAppliesLive(t *testing.T) {
	sw := &recordingSwitch{}
	h := newHarness(
		[]observation{{jobs: 1}, {jobs: 0}, {jobs: 0}, {jobs: 0}},
		sw, nil, time.Second, time.Hour)

	h.run(2)
	require.True(t, h.ctrl.PowerOn())

	h.ctrl.SetIdleTimeout(2 * time.Second)
	h.run(2)
	require.False(t, h.ctrl.PowerOn())
}

func TestSnapshotTracksCountersAndTransitions(t *testing.T) {
	sw := &recordingSwitch{}
	h := newHarness(
		[]observation{{jobs: 1}, {jobs: 0}, {jobs: 0}},
		sw, nil, time.Second, time.Second)

	h.run(3)

	snap := h.ctrl.GetSnapshot()
	require.Equal(t, uint64(3), snap.Polls)
	require.Equal(t, uint64(1), snap.Activations)
	require.Equal(t, uint64(1), snap.Deactivations)
	require.Len(t, snap.Transitions, 2)
	require.True(t, snap.Transitions[0].On)
	require.False(t, snap.Transitions[1].On)
	require.False(t, snap.LastPoll.IsZero())
}

func TestIdleFor(t *testing.T) {
	sw := &recordingSwitch{}
	h := newHarness([]observation{{jobs: 0}, {jobs: 1}, {jobs: 0}}, sw, nil, time.Second, time.Hour)

	require.Zero(t, h.ctrl.IdleFor(), "idle duration is zero before any job is seen")

	// Jobs were last seen at cycle 2; the harness clock has advanced two
	// intervals since then.
	h.run(3)
	require.Equal(t, 2*time.Second, h.ctrl.IdleFor())
	require.Equal(t, 0, h.ctrl.ActiveJobs())
}
