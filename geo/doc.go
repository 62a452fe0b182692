// Package geo provides great-circle distance math and the coarse grid cells
// backing the spatial city index.
//
// Cities are bucketed into one-degree cells keyed by CellOf. A radius query
// first computes the cell cover of its bounding box with CoverRadius, scans
// only those cells, and then applies the exact haversine distance to each
// hit. The cover is a superset of the circle, so the cell index can only
// over-select, never miss a city inside the radius.
package geo
