// Package matrixgo stores large dense travel-demand matrices as columnar
// tables and serves indexed random-access reads over them without loading
// whole matrices into memory.
//
// An N-dimensional matrix is flattened row-major into one column of a
// matrix table; a table holds many named matrices of the same shape side
// by side. Two interchangeable backends persist tables: a flat format read
// through a single memory mapping (zero-copy column views) and a row-group
// format with independently compressed chunks that serves column-pruned,
// group-pruned reads. Both embed the same schema metadata (OMX_VERSION and
// SHAPE), so a file written by one backend converts losslessly to the
// other.
//
// # Quick Start
//
// Convert a matrix source and read cells by coordinate:
//
//	src := matrixgo.NewMemorySource(25, 25).
//	    AddMatrix("SOV_TIME__AM", sovTimeAM)
//
//	mtx, _ := matrixgo.FromSource(src, "skims.mtx", matrixgo.Flat)
//	defer mtx.Close()
//
//	// Six origin-destination pairs from two matrices in one gather.
//	frame, _ := mtx.GetRC(
//	    []string{"SOV_TIME__EA", "SOV_TIME__AM"},
//	    matrixgo.Named("o", 1, 2, 3, 4, 8, 6),
//	    matrixgo.Named("d", 9, 7, 5, 6, 3, 0),
//	)
//
// Rectangular sub-blocks come from Block and BlockTable:
//
//	dense, _ := mtx.Block("SOV_TIME__AM", matrixgo.Range(0, 10), matrixgo.All())
//
// # Formats
//
// Choose the flat backend for fast whole-column and repeated random reads
// on local disks; choose the row-group backend (matrixgo.RowGroup) when
// tables are wide and reads touch few columns, or when files live on
// object storage (see package blobstore). Compression (lz4, zstd) is
// per-column-chunk and transparent on read.
//
// Matrix tables are immutable once written. Readers opened on different
// handles share nothing and are safe to use from separate goroutines.
package matrixgo
