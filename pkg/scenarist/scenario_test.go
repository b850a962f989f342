package scenarist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// equivalent drives two scenarios over the same inputs and requires the same
// value, outcome, and error: the observational equivalence the laws promise.
func equivalent(t *testing.T, left Scenario[int], right Scenario[int], updates ...Update) {
	t.Helper()

	leftValue, leftOut, leftErr := driveScenario(left.n, updates...)
	rightValue, rightOut, rightErr := driveScenario(right.n, updates...)

	assert.Equal(t, rightOut, leftOut)
	assert.Equal(t, rightValue, leftValue)
	if rightErr == nil {
		assert.NoError(t, leftErr)
	} else {
		assert.EqualError(t, leftErr, rightErr.Error())
	}
}

func TestMonadLaws(t *testing.T) {
	t.Parallel()

	double := func(v int) Scenario[int] { return Pure(v * 2) }
	plusNext := func(v int) Scenario[int] {
		return Bind(Next(Messages), func(m *Message) Scenario[int] {
			return Pure(v + len(m.Text))
		})
	}
	inputs := []Update{textUpdate(1, 7, "abc"), textUpdate(2, 7, "de")}

	t.Run("left identity", func(t *testing.T) {
		t.Parallel()
		equivalent(t, Bind(Pure(21), double), double(21))
		equivalent(t, Bind(Pure(21), plusNext), plusNext(21), inputs...)
	})

	t.Run("right identity", func(t *testing.T) {
		t.Parallel()
		s := Bind(Next(Messages), func(m *Message) Scenario[int] { return Pure(len(m.Text)) })
		equivalent(t, Bind(s, Pure[int]), s, inputs...)
	})

	t.Run("associativity", func(t *testing.T) {
		t.Parallel()
		s := Pure(3)
		left := Bind(Bind(s, double), plusNext)
		right := Bind(s, func(v int) Scenario[int] { return Bind(double(v), plusNext) })
		equivalent(t, left, right, inputs...)
	})
}

func TestErrorLaws(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	rescue := func(err error) Scenario[int] { return Pure(len(err.Error())) }

	t.Run("handle of raise runs rescue", func(t *testing.T) {
		t.Parallel()
		equivalent(t, HandleErrorWith(Raise[int](boom), rescue), rescue(boom))
	})

	t.Run("handle of pure is pure", func(t *testing.T) {
		t.Parallel()
		equivalent(t, HandleErrorWith(Pure(9), rescue), Pure(9))
	})
}

func TestStartSkipsUntilMatchAndFeedsRestToNext(t *testing.T) {
	t.Parallel()

	// Next must see the update immediately following the one Start matched.
	sc := Bind(Start(Command("go")), func(*Message) Scenario[string] {
		return Bind(Next(Messages), func(m *Message) Scenario[string] {
			return Pure(m.Text)
		})
	})

	value, out, err := driveScenario(sc.n,
		textUpdate(1, 5, "noise"),
		textUpdate(2, 5, "/go"),
		textUpdate(3, 5, "payload"),
		textUpdate(4, 5, "later"),
	)
	require.NoError(t, err)
	require.Equal(t, outcomeValue, out)
	assert.Equal(t, "payload", value)
}

func TestStartFallsThroughOnStreamEnd(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	sc := Then(Start(Command("hi")), rec.send(1, "never"))

	_, out, err := driveScenario(sc.n, textUpdate(1, 1, "no match here"))
	require.NoError(t, err)
	assert.Equal(t, outcomeFellThrough, out)
	assert.Empty(t, rec.calls(), "fall-through must produce no effects")
}

func TestNextMismatchFallsThroughSilently(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	sc := Bind(Next(PlainText), func(m *Message) Scenario[Unit] {
		return rec.send(m.Chat.ID, m.Text)
	})

	_, out, err := driveScenario(sc.n, textUpdate(1, 1, "/command"), textUpdate(2, 1, "text"))
	require.NoError(t, err)
	assert.Equal(t, outcomeFellThrough, out)
	assert.Empty(t, rec.calls())
}

func TestNextConsumesAnySingleUpdateKind(t *testing.T) {
	t.Parallel()

	// A callback query arriving while awaiting text ends the wait: any
	// single update decides.
	sc := Bind(Next(Text), func(m *Message) Scenario[string] { return Pure(m.Text) })

	_, out, err := driveScenario(sc.n, callbackUpdate(1, "pressed"), textUpdate(2, 1, "too late"))
	require.NoError(t, err)
	assert.Equal(t, outcomeFellThrough, out)
}

func TestEvalErrorUnwindsToNearestHandler(t *testing.T) {
	t.Parallel()

	boom := errors.New("rpc down")
	failing := Eval(func(context.Context) (int, error) { return 0, boom })

	handled := HandleErrorWith(
		Bind(failing, func(v int) Scenario[int] { return Pure(v + 1) }),
		func(err error) Scenario[int] { return Pure(-1) },
	)

	value, out, err := driveScenario(handled.n)
	require.NoError(t, err)
	require.Equal(t, outcomeValue, out)
	assert.Equal(t, -1, value)
}

func TestUnhandledRaiseFails(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, out, err := driveScenario(Raise[int](boom).n)
	assert.Equal(t, outcomeFailed, out)
	require.ErrorIs(t, err, boom)
}

func TestAttemptCapturesBothBranches(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	value, out, err := driveScenario(Attempt(Pure(4)).n)
	require.NoError(t, err)
	require.Equal(t, outcomeValue, out)
	assert.Equal(t, Result[int]{Value: 4}, value)

	value, out, err = driveScenario(Attempt(Raise[int](boom)).n)
	require.NoError(t, err)
	require.Equal(t, outcomeValue, out)
	assert.Equal(t, Result[int]{Err: boom}, value)
}

func TestDoneBypassesErrorHandlers(t *testing.T) {
	t.Parallel()

	rescued := false
	sc := HandleErrorWith(Done[int](), func(error) Scenario[int] {
		rescued = true
		return Pure(0)
	})

	_, out, err := driveScenario(sc.n)
	require.NoError(t, err)
	assert.Equal(t, outcomeFellThrough, out)
	assert.False(t, rescued, "done is not an error and must not be rescued")
}

func TestEffectPanicBecomesScenarioError(t *testing.T) {
	t.Parallel()

	sc := Eval(func(context.Context) (int, error) { panic("user bug") })

	_, out, err := driveScenario(sc.n)
	assert.Equal(t, outcomeFailed, out)
	require.ErrorContains(t, err, "user bug")
}

func TestLongBindChainIsStackSafe(t *testing.T) {
	t.Parallel()

	const depth = 100_000
	sc := Pure(0)
	for i := 0; i < depth; i++ {
		sc = Bind(sc, func(v int) Scenario[int] { return Pure(v + 1) })
	}

	value, out, err := driveScenario(sc.n)
	require.NoError(t, err)
	require.Equal(t, outcomeValue, out)
	assert.Equal(t, depth, value)
}

func TestScenarioValueIsReusable(t *testing.T) {
	t.Parallel()

	// Two drives of one scenario value over disjoint streams do not
	// interfere.
	sc := Bind(Start(Text), func(m *Message) Scenario[string] { return Pure(m.Text) })

	first, out1, err1 := driveScenario(sc.n, textUpdate(1, 1, "one"))
	second, out2, err2 := driveScenario(sc.n, textUpdate(9, 2, "two"))

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, outcomeValue, out1)
	assert.Equal(t, outcomeValue, out2)
	assert.Equal(t, "one", first)
	assert.Equal(t, "two", second)
}
