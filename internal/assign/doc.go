// Package assign matches mosaic cells to tiles.
//
// The matcher is a capacitated greedy walk over a globally ranked edge list:
//
//  1. Every (tile, cell) pair becomes an edge weighted by the Euclidean
//     distance between the tile's mean color and the cell's target color.
//  2. All edges are sorted by ascending distance. The sort is stable, and
//     edges are enumerated tile by tile and, within a tile, column by
//     column (x outer, y inner), so equal distances resolve in that order.
//  3. The sorted edges are consumed once, in order. An edge is taken when
//     its tile still has quota and its cell is still free. Taking an edge
//     assigns the cell, spends one unit of the tile's quota and appends the
//     cell to the placement order.
//
// Each tile's quota is ceil(W*H/S), so total capacity always covers the
// grid and the walk fills every cell. This is not a minimum-cost matching:
// an early cheap edge can force a later cell onto a worse tile. The
// placement order it produces (best match first) is what the compositor
// paints in reverse, so the exact ranking matters beyond the final grid.
package assign
