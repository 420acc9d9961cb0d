package tokenizer

import "strings"

// detectSampleLines is how many leading lines delimiter auto-detection
// scans before committing to a candidate.
const detectSampleLines = 10

// detectSampleBytes is how much of the buffer newline auto-detection
// scans for terminator frequency.
const detectSampleBytes = 1024

// DetectNewline scans the first 1 KiB of sample for "\r\n", "\r", and "\n"
// occurrences and returns the most frequent, breaking ties in that order.
// An empty sample returns "\n".
func DetectNewline(sample string) string {
	if len(sample) > detectSampleBytes {
		sample = sample[:detectSampleBytes]
	}
	crlf := strings.Count(sample, "\r\n")
	// Count bare \r and \n by excluding the \r\n pairs already counted.
	cr := strings.Count(sample, "\r") - crlf
	lf := strings.Count(sample, "\n") - crlf
	switch {
	case crlf >= cr && crlf >= lf && crlf > 0:
		return "\r\n"
	case cr >= lf && cr > 0:
		return "\r"
	case lf > 0:
		return "\n"
	default:
		return "\n"
	}
}

// DetectDelimiter scans the first detectSampleLines lines of sample (split
// on newline) for each candidate delimiter, scoring by field-count
// consistency (lower variance wins) then by total field count (higher
// wins). It returns false if no candidate produces at least two fields on
// any line.
func DetectDelimiter(sample string, newline string, candidates []rune) (rune, bool) {
	if newline == "" {
		newline = DetectNewline(sample)
	}
	lines := strings.Split(sample, newline)
	if len(lines) > detectSampleLines {
		lines = lines[:detectSampleLines]
	}

	var best delimiterScore
	haveBest := false

	for _, d := range candidates {
		counts := make([]int, 0, len(lines))
		total := 0
		maxFields := 0
		for _, line := range lines {
			if line == "" {
				continue
			}
			n := strings.Count(line, string(d)) + 1
			counts = append(counts, n)
			total += n
			if n > maxFields {
				maxFields = n
			}
		}
		if maxFields < 2 {
			continue
		}
		s := delimiterScore{delim: d, variance: variance(counts), total: total}
		if !haveBest || s.better(best) {
			best = s
			haveBest = true
		}
	}

	if !haveBest {
		return ',', false
	}
	return best.delim, true
}

// delimiterScore ranks a candidate delimiter by field-count consistency
// across the sample lines, then by total field count.
type delimiterScore struct {
	delim    rune
	variance float64
	total    int
}

// better reports whether s is a stronger candidate than other: lower
// variance wins; ties break toward the higher total field count.
func (s delimiterScore) better(other delimiterScore) bool {
	if s.variance != other.variance {
		return s.variance < other.variance
	}
	return s.total > other.total
}

func variance(counts []int) float64 {
	if len(counts) == 0 {
		return 0
	}
	var sum float64
	for _, c := range counts {
		sum += float64(c)
	}
	mean := sum / float64(len(counts))
	var acc float64
	for _, c := range counts {
		d := float64(c) - mean
		acc += d * d
	}
	return acc / float64(len(counts))
}
