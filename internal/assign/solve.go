package assign

import (
	"cmp"
	"context"
	"image"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
	"github.com/ironsheep/photo-mosaic/internal/imaging"
)

// Assignment is the result of Solve. It is not modified after Solve returns.
type Assignment struct {
	// W and H are the grid dimensions in cells.
	W, H int

	// Pool is the number of tiles S. It doubles as the unassigned sentinel.
	Pool int

	// InitialQuota is the per-tile budget, ceil(W*H/S).
	InitialQuota int

	// Grid maps cell (x, y), stored at y*W + x, to a tile index.
	Grid []int

	// Order lists cells in the order they were assigned (closest match first).
	Order []image.Point

	// Distances holds the chosen edge distance for each entry of Order.
	Distances []float64

	// Quota is the remaining budget of each tile.
	Quota []int
}

// TileAt returns the tile assigned to cell (x, y).
func (a *Assignment) TileAt(x, y int) int {
	return a.Grid[y*a.W+x]
}

// Uses returns how many cells each tile was assigned to.
func (a *Assignment) Uses() []int {
	uses := make([]int, a.Pool)
	for _, t := range a.Grid {
		if t >= 0 && t < a.Pool {
			uses[t]++
		}
	}
	return uses
}

// MeanDistance returns the average chosen edge distance.
func (a *Assignment) MeanDistance() float64 {
	if len(a.Distances) == 0 {
		return 0
	}
	return stat.Mean(a.Distances, nil)
}

// Verify checks the postconditions of a completed assignment: every cell
// holds a real tile, Order is a permutation of all cells with non-decreasing
// distances, and no tile exceeds its quota.
func (a *Assignment) Verify() error {
	cells := a.W * a.H
	if len(a.Grid) != cells {
		return merrors.New(merrors.ErrCodeInvariant, "grid has %d entries for %d cells", len(a.Grid), cells)
	}
	if len(a.Order) != cells || len(a.Distances) != cells {
		return merrors.New(merrors.ErrCodeInvariant, "placement order has %d entries for %d cells", len(a.Order), cells)
	}
	for i, t := range a.Grid {
		if t < 0 || t >= a.Pool {
			return merrors.New(merrors.ErrCodeInvariant, "cell (%d,%d) is unassigned", i%a.W, i/a.W)
		}
	}

	seen := make([]bool, cells)
	for i, p := range a.Order {
		if p.X < 0 || p.X >= a.W || p.Y < 0 || p.Y >= a.H {
			return merrors.New(merrors.ErrCodeInvariant, "placement order entry %d is outside the grid: %v", i, p)
		}
		idx := p.Y*a.W + p.X
		if seen[idx] {
			return merrors.New(merrors.ErrCodeInvariant, "cell %v placed twice", p)
		}
		seen[idx] = true
		if i > 0 && a.Distances[i] < a.Distances[i-1] {
			return merrors.New(merrors.ErrCodeInvariant, "placement order distance decreases at entry %d", i)
		}
	}

	for t, n := range a.Uses() {
		if n > a.InitialQuota {
			return merrors.New(merrors.ErrCodeInvariant, "tile %d used %d times, quota %d", t, n, a.InitialQuota)
		}
		if a.Quota != nil && a.Quota[t] != a.InitialQuota-n {
			return merrors.New(merrors.ErrCodeInvariant, "tile %d quota %d does not match %d uses", t, a.Quota[t], n)
		}
	}
	return nil
}

// edge is one candidate (tile, cell) pairing. cell counts cells column by
// column: cell = x*H + y.
type edge struct {
	dist float64
	tile int32
	cell int32
}

// walk is the mutable state of the greedy pass. It is owned by a single
// Solve call and never shared.
type walk struct {
	w, h      int
	sentinel  int
	quota     []int
	grid      []int
	order     []image.Point
	dists     []float64
	remaining int
}

func newWalk(w, h, pool, quota int) *walk {
	st := &walk{
		w:         w,
		h:         h,
		sentinel:  pool,
		quota:     make([]int, pool),
		grid:      make([]int, w*h),
		order:     make([]image.Point, 0, w*h),
		dists:     make([]float64, 0, w*h),
		remaining: w * h,
	}
	for i := range st.quota {
		st.quota[i] = quota
	}
	for i := range st.grid {
		st.grid[i] = pool
	}
	return st
}

// take assigns e if its tile has quota left and its cell is free.
func (st *walk) take(e edge) {
	tile := int(e.tile)
	if st.quota[tile] == 0 {
		return
	}
	x, y := int(e.cell)/st.h, int(e.cell)%st.h
	idx := y*st.w + x
	if st.grid[idx] != st.sentinel {
		return
	}
	st.grid[idx] = tile
	st.quota[tile]--
	st.order = append(st.order, image.Pt(x, y))
	st.dists = append(st.dists, e.dist)
	st.remaining--
}

// cancelCheckInterval is how many edges are walked between context checks.
const cancelCheckInterval = 1 << 16

// Solve assigns a tile to every cell of preview.
//
// tiles holds the mean color of each tile, in pool order. preview and tiles
// must use the same color space and channel count. Each tile may be used at
// most ceil(W*H/S) times.
//
// # Errors
//
//   - ErrCodeConfiguration: empty tile pool, empty grid, or mismatched
//     channel counts. Reported before any edge is built.
//   - ErrCodeInvariant: the walk ended with unfilled cells. Cannot happen
//     with the quota above; it guards the postcondition.
//   - ctx.Err() if ctx is cancelled.
func Solve(ctx context.Context, preview Preview, tiles []imaging.ColorVector) (*Assignment, error) {
	pool := len(tiles)
	if pool == 0 {
		return nil, merrors.New(merrors.ErrCodeConfiguration, "tile pool is empty")
	}
	if err := preview.Validate(); err != nil {
		return nil, err
	}
	cells := preview.W * preview.H
	if cells > math.MaxInt32 || pool > math.MaxInt32 {
		return nil, merrors.New(merrors.ErrCodeConfiguration, "grid of %d cells with %d tiles is too large", cells, pool)
	}
	channels := len(preview.Colors[0])
	for i, c := range preview.Colors {
		if len(c) != channels {
			return nil, merrors.New(merrors.ErrCodeConfiguration, "cell %d has %d channels, want %d", i, len(c), channels)
		}
	}
	for i, c := range tiles {
		if len(c) != channels {
			return nil, merrors.New(merrors.ErrCodeConfiguration, "tile %d has %d channels, want %d", i, len(c), channels)
		}
	}

	edges := buildEdges(preview, tiles)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(edges, func(a, b edge) int {
		return cmp.Compare(a.dist, b.dist)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quota := (cells + pool - 1) / pool
	st := newWalk(preview.W, preview.H, pool, quota)
	for i, e := range edges {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		st.take(e)
		if st.remaining == 0 {
			break
		}
	}

	if st.remaining != 0 {
		return nil, merrors.New(merrors.ErrCodeInvariant, "assignment left %d of %d cells unfilled", st.remaining, cells)
	}

	a := &Assignment{
		W:            preview.W,
		H:            preview.H,
		Pool:         pool,
		InitialQuota: quota,
		Grid:         st.grid,
		Order:        st.order,
		Distances:    st.dists,
		Quota:        st.quota,
	}
	if err := a.Verify(); err != nil {
		return nil, err
	}
	return a, nil
}

// buildEdges enumerates all S*W*H edges, tile-major, then column by column.
func buildEdges(preview Preview, tiles []imaging.ColorVector) []edge {
	w, h := preview.W, preview.H
	edges := make([]edge, 0, len(tiles)*w*h)
	for t, tc := range tiles {
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				edges = append(edges, edge{
					dist: tc.Distance(preview.Colors[y*w+x]),
					tile: int32(t),
					cell: int32(x*h + y),
				})
			}
		}
	}
	return edges
}
