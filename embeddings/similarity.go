// Package embeddings compares embedding vectors returned by the embeddings
// endpoint.
package embeddings

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrEmpty is returned when a vector has no dimensions.
	ErrEmpty = errors.New("embedding is empty")

	// ErrLengthMismatch is returned when two vectors differ in length.
	ErrLengthMismatch = errors.New("embeddings must have equal lengths")

	// ErrZeroMagnitude is returned when cosine similarity is asked of a zero
	// vector.
	ErrZeroMagnitude = errors.New("embedding magnitude is zero")

	// ErrZeroVariance is returned when a correlation is asked of a constant
	// vector.
	ErrZeroVariance = errors.New("embedding variance is zero")
)

func check(a, b []float64) error {
	if len(a) == 0 || len(b) == 0 {
		return ErrEmpty
	}
	if len(a) != len(b) {
		return errors.Wrapf(ErrLengthMismatch, "%d != %d", len(a), len(b))
	}
	return nil
}

// CosineSimilarity calculates the cosine similarity between two embeddings.
//
// https://en.wikipedia.org/wiki/Cosine_similarity
func CosineSimilarity(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0, ErrZeroMagnitude
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}

// EuclideanDistance calculates the Euclidean distance between two embeddings.
//
// https://en.wikipedia.org/wiki/Euclidean_distance
func EuclideanDistance(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// ManhattanDistance calculates the sum of absolute differences between two
// embeddings.
//
// https://en.wikipedia.org/wiki/Taxicab_geometry
func ManhattanDistance(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}

	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum, nil
}

// PearsonCorrelation calculates the linear correlation between two
// embeddings, from -1 to 1.
//
// https://en.wikipedia.org/wiki/Pearson_correlation_coefficient
func PearsonCorrelation(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}

	meanA, meanB := mean(a), mean(b)

	var cov, varA, varB float64
	for i := range a {
		dA, dB := a[i]-meanA, b[i]-meanB
		cov += dA * dB
		varA += dA * dA
		varB += dB * dB
	}

	if varA == 0 || varB == 0 {
		return 0, ErrZeroVariance
	}

	return cov / math.Sqrt(varA*varB), nil
}

// SpearmanCorrelation is the Pearson correlation of the ranks of the values,
// which makes it insensitive to outliers. Tied values share their average
// rank.
//
// https://en.wikipedia.org/wiki/Spearman%27s_rank_correlation_coefficient
func SpearmanCorrelation(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}
	return PearsonCorrelation(ranks(a), ranks(b))
}

// ranks returns the 1-based rank of each value.
func ranks(data []float64) []float64 {
	order := make([]int, len(data))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int {
		return cmp.Compare(data[x], data[y])
	})

	out := make([]float64, len(data))
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && data[order[j+1]] == data[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[order[k]] = avg
		}
		i = j + 1
	}
	return out
}

func mean(data []float64) float64 {
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// JaccardSimilarity treats the embeddings as sets of non-zero positions and
// divides the count of equal positions by the size of their union. Two zero
// vectors are identical.
//
// https://en.wikipedia.org/wiki/Jaccard_index
func JaccardSimilarity(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}

	var intersection, union float64
	for i := range a {
		if a[i] == 0 && b[i] == 0 {
			continue
		}
		union++
		if a[i] == b[i] {
			intersection++
		}
	}

	if union == 0 {
		return 1, nil
	}
	return intersection / union, nil
}

// HammingDistance counts the positions at which the embeddings differ.
//
// https://en.wikipedia.org/wiki/Hamming_distance
func HammingDistance(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}

	var n float64
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n, nil
}

// BrayCurtisDistance divides the sum of absolute differences by the sum of
// absolute sums, giving 0 for identical embeddings and 1 for opposite ones.
//
// https://en.wikipedia.org/wiki/Bray%E2%80%93Curtis_dissimilarity
func BrayCurtisDistance(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}

	var diff, sum float64
	for i := range a {
		diff += math.Abs(a[i] - b[i])
		sum += math.Abs(a[i] + b[i])
	}

	if sum == 0 {
		if diff == 0 {
			return 0, nil
		}
		return 1, nil
	}
	return diff / sum, nil
}

// Metric compares two embeddings.
type Metric struct {
	Name string
	Fn   func(a, b []float64) (float64, error)

	// Similarity is true when a larger score means closer vectors.
	Similarity bool
}

var (
	Cosine     = Metric{Name: "cosine", Fn: CosineSimilarity, Similarity: true}
	Euclidean  = Metric{Name: "euclidean", Fn: EuclideanDistance}
	Manhattan  = Metric{Name: "manhattan", Fn: ManhattanDistance}
	Pearson    = Metric{Name: "pearson", Fn: PearsonCorrelation, Similarity: true}
	Spearman   = Metric{Name: "spearman", Fn: SpearmanCorrelation, Similarity: true}
	Jaccard    = Metric{Name: "jaccard", Fn: JaccardSimilarity, Similarity: true}
	Hamming    = Metric{Name: "hamming", Fn: HammingDistance}
	BrayCurtis = Metric{Name: "braycurtis", Fn: BrayCurtisDistance}
)

// Metrics lists every metric ParseMetric accepts, cosine first.
var Metrics = []Metric{Cosine, Euclidean, Manhattan, Pearson, Spearman, Jaccard, Hamming, BrayCurtis}

// MetricNames returns the names of Metrics.
func MetricNames() []string {
	names := make([]string, len(Metrics))
	for i, m := range Metrics {
		names[i] = m.Name
	}
	return names
}

// ParseMetric returns the metric with the given name. An empty name selects
// cosine similarity.
func ParseMetric(name string) (Metric, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Cosine, nil
	}

	for _, m := range Metrics {
		if m.Name == name {
			return m, nil
		}
	}
	return Metric{}, errors.Errorf("unknown metric %q, want one of %s", name, strings.Join(MetricNames(), ", "))
}

// Match is one ranked candidate.
type Match struct {
	Index int
	Score float64
}

// Rank orders candidates by closeness to query, closest first. Ties keep the
// candidates' original order.
func Rank(query []float64, candidates [][]float64, m Metric) ([]Match, error) {
	matches := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		score, err := m.Fn(query, c)
		if err != nil {
			return nil, errors.Wrapf(err, "candidate %d", i)
		}
		matches = append(matches, Match{Index: i, Score: score})
	}

	slices.SortStableFunc(matches, func(x, y Match) int {
		if m.Similarity {
			return cmp.Compare(y.Score, x.Score)
		}
		return cmp.Compare(x.Score, y.Score)
	})

	return matches, nil
}
