package geometry

import (
	"image"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"

	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
)

// MaxDenominator bounds the denominator of a derived tile ratio.
const MaxDenominator = 20

// Ratio is a tile aspect ratio expressed as width:height.
type Ratio struct {
	W int `toml:"w"`
	H int `toml:"h"`
}

// Validate reports a configuration error if either component is not positive.
func (r Ratio) Validate() error {
	if r.W <= 0 || r.H <= 0 {
		return merrors.New(merrors.ErrCodeConfiguration, "tile ratio components must be positive, got %d:%d", r.W, r.H)
	}
	return nil
}

// ParseRatio parses "W:H", for example "3:4".
func ParseRatio(s string) (Ratio, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Ratio{}, merrors.New(merrors.ErrCodeConfiguration, "invalid ratio %q: want W:H", s)
	}
	wi, errW := strconv.Atoi(strings.TrimSpace(w))
	hi, errH := strconv.Atoi(strings.TrimSpace(h))
	if errW != nil || errH != nil {
		return Ratio{}, merrors.New(merrors.ErrCodeConfiguration, "invalid ratio %q: want whole numbers W:H", s)
	}
	r := Ratio{W: wi, H: hi}
	if err := r.Validate(); err != nil {
		return Ratio{}, err
	}
	return r, nil
}

// Float returns W/H.
func (r Ratio) Float() float64 {
	return float64(r.W) / float64(r.H)
}

// TileRatio derives a tile aspect ratio from donor dimensions.
//
// The median width/height ratio is taken over every donor (the mean of the
// two middle values for an even count) and then approximated by the closest
// fraction whose denominator does not exceed MaxDenominator.
func TileRatio(sizes []image.Point) (Ratio, error) {
	if len(sizes) == 0 {
		return Ratio{}, merrors.New(merrors.ErrCodeConfiguration, "tile pool is empty")
	}

	ratios := make([]float64, 0, len(sizes))
	for _, s := range sizes {
		if s.X <= 0 || s.Y <= 0 {
			return Ratio{}, merrors.New(merrors.ErrCodeConfiguration, "tile has non-positive size %dx%d", s.X, s.Y)
		}
		ratios = append(ratios, float64(s.X)/float64(s.Y))
	}
	sort.Float64s(ratios)

	n := len(ratios)
	median := ratios[n/2]
	if n%2 == 0 {
		median = (ratios[n/2-1] + ratios[n/2]) / 2
	}
	return ApproximateRatio(median, MaxDenominator), nil
}

// ApproximateRatio returns the fraction p/q closest to x with 1 <= q <= maxDen.
//
// x is read exactly (as the binary value of the float) and walked down its
// continued-fraction expansion. When the next convergent would exceed
// maxDen, the best semiconvergent is compared with the last convergent and
// the closer one wins; ties go to the convergent.
func ApproximateRatio(x float64, maxDen int) Ratio {
	if maxDen < 1 {
		maxDen = 1
	}
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return Ratio{W: 1, H: 1}
	}

	target := new(big.Rat).SetFloat64(x)
	limit := big.NewInt(int64(maxDen))
	if target.Denom().Cmp(limit) <= 0 {
		return ratioFromRat(target)
	}

	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	n := new(big.Int).Set(target.Num())
	d := new(big.Int).Set(target.Denom())

	for {
		a := new(big.Int).Quo(n, d)
		q2 := new(big.Int).Add(q0, new(big.Int).Mul(a, q1))
		if q2.Cmp(limit) > 0 {
			break
		}
		p2 := new(big.Int).Add(p0, new(big.Int).Mul(a, p1))
		p0, q0, p1, q1 = p1, q1, p2, q2
		n, d = d, new(big.Int).Sub(n, new(big.Int).Mul(a, d))
	}

	k := new(big.Int).Quo(new(big.Int).Sub(limit, q0), q1)
	bound1 := new(big.Rat).SetFrac(
		new(big.Int).Add(p0, new(big.Int).Mul(k, p1)),
		new(big.Int).Add(q0, new(big.Int).Mul(k, q1)),
	)
	bound2 := new(big.Rat).SetFrac(p1, q1)

	best := bound1
	if ratAbsDiff(bound2, target).Cmp(ratAbsDiff(bound1, target)) <= 0 {
		best = bound2
	}
	if best.Sign() == 0 {
		// Ratios below 1/(2*maxDen) would round to a zero-width tile.
		return Ratio{W: 1, H: maxDen}
	}
	return ratioFromRat(best)
}

func ratAbsDiff(a, b *big.Rat) *big.Rat {
	d := new(big.Rat).Sub(a, b)
	return d.Abs(d)
}

func ratioFromRat(r *big.Rat) Ratio {
	return Ratio{W: int(r.Num().Int64()), H: int(r.Denom().Int64())}
}
