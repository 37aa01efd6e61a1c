package fiscal

import "fmt"

// Method selects which lot a disposal consumes first.
type Method int

const (
	// FIFO consumes the oldest acquisition lot first.
	FIFO Method = iota
	// LIFO consumes the newest acquisition lot first.
	LIFO
)

func (m Method) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	default:
		return "unknown"
	}
}

// ParseMethod parses a string into a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "fifo", "FIFO":
		return FIFO, nil
	case "lifo", "LIFO":
		return LIFO, nil
	default:
		return 0, fmt.Errorf("unknown lot matching method: %q", s)
	}
}
