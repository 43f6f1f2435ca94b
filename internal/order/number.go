package order

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/theplant/luhn"
)

const DefaultNumberPrefix = "ORD"

// NumberGenerator issues order numbers of the form PREFIX-YEAR-DIGITS. The
// digits are the millisecond clock mod 10^6, a 4-digit sequence and a Luhn
// check digit. The sequence starts at a random point so that restarts and
// replicas rarely meet; storage still has the final word via UNIQUE(number).
type NumberGenerator struct {
	clock Clock
	seq   uint32
}

func NewNumberGenerator(clock Clock) *NumberGenerator {
	if clock == nil {
		clock = SystemClock{}
	}
	seed := time.Now().UnixNano() ^ int64(os.Getpid())
	return &NumberGenerator{clock: clock, seq: rand.New(rand.NewSource(seed)).Uint32()}
}

func (g *NumberGenerator) Next(prefix string) string {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}

	now := g.clock.Now()
	seq := int64(atomic.AddUint32(&g.seq, 1) % 10000)
	ms := now.UnixNano() / int64(time.Millisecond) % 1000000

	// theplant/luhn works on int, so the 11 digits need a 64-bit int
	base := ms*10000 + seq
	digits := base*10 + int64(luhn.CalculateLuhn(int(base)))

	return strings.ToUpper(fmt.Sprintf("%s-%04d-%011d", prefix, now.Year(), digits))
}

var defaultGenerator = NewNumberGenerator(SystemClock{})

func GenerateOrderNumber(prefix string) string {
	return defaultGenerator.Next(prefix)
}

// ValidOrderNumber checks the shape of a generated number and the Luhn
// digit of its numeric suffix.
func ValidOrderNumber(number string) bool {
	parts := strings.Split(number, "-")
	if len(parts) < 3 {
		return false
	}

	year := parts[len(parts)-2]
	if len(year) != 4 {
		return false
	}
	if _, err := strconv.Atoi(year); err != nil {
		return false
	}

	suffix := parts[len(parts)-1]
	if suffix == "" || strings.Trim(suffix, "0123456789") != "" {
		return false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return false
	}
	return luhn.Valid(n)
}
