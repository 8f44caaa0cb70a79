package cli

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

type fakeSpinner struct {
	text    string
	stopped bool
	success []any
	failure []any
}

func (s *fakeSpinner) Stop() error {
	s.stopped = true
	return nil
}

func (s *fakeSpinner) Success(args ...any) {
	s.success = args
}

func (s *fakeSpinner) Fail(args ...any) {
	s.failure = args
}

func (s *fakeSpinner) UpdateText(text string) {
	s.text = text
}

func newFakeProgress(t *testing.T) (*progress, *[]*fakeSpinner) {
	t.Helper()
	var spinners []*fakeSpinner
	p := newProgress(&bytes.Buffer{}, true)
	p.factory = func(_ io.Writer, text string) (progressSpinner, error) {
		s := &fakeSpinner{text: text}
		spinners = append(spinners, s)
		return s, nil
	}
	return p, &spinners
}

func TestProgressSteps(t *testing.T) {
	p, spinners := newFakeProgress(t)

	test.That(t, p.Start("source", "opening fake source"), test.ShouldBeNil)
	test.That(t, p.status("source"), test.ShouldEqual, stepRunning)
	p.Update("still opening")
	test.That(t, (*spinners)[0].text, test.ShouldEqual, "still opening")
	test.That(t, p.Done("source", ""), test.ShouldBeNil)
	test.That(t, p.status("source"), test.ShouldEqual, stepDone)
	test.That(t, len((*spinners)[0].success), test.ShouldEqual, 1)
	test.That(t, fmt.Sprint((*spinners)[0].success[0]), test.ShouldStartWith, "opening fake source (")

	test.That(t, p.Start("frame", "measuring frame 1/1"), test.ShouldBeNil)
	test.That(t, p.Fail("frame", errors.New("no depth")), test.ShouldBeNil)
	test.That(t, p.status("frame"), test.ShouldEqual, stepFailed)
	test.That(t, (*spinners)[1].failure, test.ShouldResemble, []any{"measuring frame 1/1: no depth"})

	test.That(t, p.status("pipeline"), test.ShouldEqual, stepPending)
	test.That(t, p.Done("pipeline", ""), test.ShouldNotBeNil)
	test.That(t, p.Fail("pipeline", errors.New("x")), test.ShouldNotBeNil)
}

func TestProgressStartStopsRunningSpinner(t *testing.T) {
	p, spinners := newFakeProgress(t)
	test.That(t, p.Start("a", "first"), test.ShouldBeNil)
	test.That(t, p.Start("b", "second"), test.ShouldBeNil)
	test.That(t, (*spinners)[0].stopped, test.ShouldBeTrue)
	p.Stop()
	test.That(t, (*spinners)[1].stopped, test.ShouldBeTrue)
}

func TestProgressDisabled(t *testing.T) {
	var out bytes.Buffer
	p := newProgress(&out, false)
	p.factory = func(io.Writer, string) (progressSpinner, error) {
		t.Fatal("spinner started while disabled")
		return nil, nil
	}
	test.That(t, p.Start("a", "first"), test.ShouldBeNil)
	test.That(t, p.Done("a", "done"), test.ShouldBeNil)
	test.That(t, p.status("a"), test.ShouldEqual, stepDone)
	p.Stop()
	test.That(t, out.Len(), test.ShouldEqual, 0)
}
