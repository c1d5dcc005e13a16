/*package cells bins the particles of a periodic 2D or 3D simulation box into
a regular grid of cells so that short-range pair searches only need to look
at a fixed set of neighboring cells.

A CellList owns four flat arrays which downstream code reads directly:

    CellSizes()  occupancy of every cell
    XYZF()       position and flag of every (slot, cell) pair
    TDB()        type, diameter and body of every (slot, cell) pair (optional)
    Adj()        neighboring cell ids of every (offset, cell) pair

The arrays are indexed with CellIndexer(), SlotIndexer() and AdjIndexer().
Slot order within a cell is not meaningful, and with the Parallel backend it
changes from pass to pass.

The driver tells the CellList when the box has changed or the particles have
been reordered and then calls Compute once per step. Compute decides how much
of the grid needs rebuilding, rebins if required, and returns a *Error if a
particle is non-finite, outside the box, or lands in a full cell.
*/
package cells
