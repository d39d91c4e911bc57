package consumer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailsift/internal/app/errors"
	"tailsift/internal/app/linestore"
	"tailsift/internal/app/pipeline"
)

func lines(nums ...int) []linestore.Line {
	out := make([]linestore.Line, len(nums))
	for i, n := range nums {
		out[i] = linestore.Line{Number: n, Text: "text"}
	}

	return out
}

func drive(t *testing.T, updates ...pipeline.Update) (Consumer, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	c := New(&buf)
	ch := make(chan pipeline.Update, len(updates))

	for _, u := range updates {
		ch <- u
	}

	close(ch)

	c.Run(ch)
	c.Wait()

	return c, &buf
}

func Test_Consumer_ReplaceSetsView(t *testing.T) {
	c, _ := drive(t, pipeline.Update{Type: pipeline.Replace, Lines: lines(1, 2, 3)})

	assert.Equal(t, lines(1, 2, 3), c.View())
}

func Test_Consumer_AppendExtendsView(t *testing.T) {
	c, _ := drive(t,
		pipeline.Update{Type: pipeline.Replace, Lines: lines(1, 2)},
		pipeline.Update{Type: pipeline.Append, Lines: lines(3)},
	)

	assert.Equal(t, lines(1, 2, 3), c.View())
}

func Test_Consumer_SeparatorBetweenChunks(t *testing.T) {
	_, buf := drive(t, pipeline.Update{Type: pipeline.Replace, Lines: lines(2, 5)})

	out := buf.String()
	assert.Contains(t, out, Separator)
	assert.Contains(t, out, "2  text")
	assert.Contains(t, out, "5  text")
}

func Test_Consumer_NoSeparatorForContiguousRun(t *testing.T) {
	_, buf := drive(t, pipeline.Update{Type: pipeline.Replace, Lines: lines(1, 2, 3)})

	assert.NotContains(t, buf.String(), Separator)
}

func Test_Consumer_SeparatorAcrossAppendGap(t *testing.T) {
	_, buf := drive(t,
		pipeline.Update{Type: pipeline.Replace, Lines: lines(1, 2)},
		pipeline.Update{Type: pipeline.Append, Lines: lines(7)},
	)

	assert.Contains(t, buf.String(), Separator)
}

func Test_Consumer_EmptyReplaceClearsView(t *testing.T) {
	c, _ := drive(t,
		pipeline.Update{Type: pipeline.Replace, Lines: lines(1, 2)},
		pipeline.Update{Type: pipeline.Replace, Lines: nil},
	)

	assert.Empty(t, c.View())
}

func Test_Consumer_SourceErrorRendered(t *testing.T) {
	_, buf := drive(t, pipeline.Update{Type: pipeline.SourceError, Err: errors.ErrSourceUnavailable})

	require.Contains(t, buf.String(), "source error")
	assert.Contains(t, buf.String(), errors.ErrSourceUnavailable.Error())
}
