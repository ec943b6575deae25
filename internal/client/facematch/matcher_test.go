package facematch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchIdenticalPayload(t *testing.T) {
	m := New()
	img := "data:image/jpeg;base64," + strings.Repeat("QUJDRA", 100)

	res := m.Match(img, img)

	require.True(t, res.IsMatch)
	require.Equal(t, 100.0, res.Score)
}

func TestMatchCompletelyDifferent(t *testing.T) {
	m := New()
	img1 := strings.Repeat("A", 1000)
	img2 := strings.Repeat("B", 1000)

	res := m.Match(img1, img2)

	require.False(t, res.IsMatch)
	require.Less(t, res.Score, DefaultThreshold)
	require.Equal(t, 0.0, res.Score)
}

func TestMatchStripsDataURIPrefix(t *testing.T) {
	m := New()
	raw := strings.Repeat("Zm9vYmFy", 50)

	// El prefijo de formato no participa en la comparación
	res := m.Match("data:image/png;base64,"+raw, raw)

	require.True(t, res.IsMatch)
	require.Equal(t, 100.0, res.Score)
}

func TestMatchEmptyPayloads(t *testing.T) {
	m := New()

	require.False(t, m.Match("", "abc").IsMatch)
	require.False(t, m.Match("abc", "").IsMatch)
	require.False(t, m.Match("", "").IsMatch)
}

func TestMatchComparesOverShorterLength(t *testing.T) {
	m := New()
	short := strings.Repeat("X", 100)
	long := strings.Repeat("X", 100) + strings.Repeat("Y", 900)

	// Solo se comparan las primeras 100 posiciones: todas iguales
	res := m.Match(short, long)

	require.True(t, res.IsMatch)
	require.Equal(t, 100.0, res.Score)
}

func TestMatchHonorsMaxCompareCap(t *testing.T) {
	m := Matcher{Threshold: DefaultThreshold, MaxCompare: 10}

	// Idénticos en las primeras 10 posiciones, distintos después
	img1 := strings.Repeat("A", 10) + strings.Repeat("B", 100)
	img2 := strings.Repeat("A", 10) + strings.Repeat("C", 100)

	res := m.Match(img1, img2)

	require.True(t, res.IsMatch)
	require.Equal(t, 100.0, res.Score)
}

func TestMatchThresholdBoundary(t *testing.T) {
	m := Matcher{Threshold: 90, MaxCompare: DefaultMaxCompare}

	// 90 de 100 posiciones iguales: exactamente en el umbral
	img1 := strings.Repeat("A", 90) + strings.Repeat("B", 10)
	img2 := strings.Repeat("A", 90) + strings.Repeat("C", 10)

	res := m.Match(img1, img2)

	require.Equal(t, 90.0, res.Score)
	require.True(t, res.IsMatch)

	// 89 de 100: por debajo del umbral
	img3 := strings.Repeat("A", 89) + strings.Repeat("B", 11)
	img4 := strings.Repeat("A", 89) + strings.Repeat("C", 11)

	res = m.Match(img3, img4)

	require.InDelta(t, 89.0, res.Score, 0.001)
	require.False(t, res.IsMatch)
}

func TestMatchDeterministic(t *testing.T) {
	m := New()
	img1 := strings.Repeat("AB", 500)
	img2 := strings.Repeat("AC", 500)

	first := m.Match(img1, img2)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, m.Match(img1, img2))
	}
}
