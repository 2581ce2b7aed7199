// Package exporter writes pipeline tables and training reports to disk.
//
// CSVWriter resolves relative file names into the reports directory and
// writes either prepared records (WriteCSV), a streamed table (WriteTable),
// a ranked importance list (WriteImportances) or an Excel workbook
// (WriteTableXLSX). Table exports put Area_Name and Year first and leave
// missing cells empty, so the files load back through the source parser.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths, logger)
//	path, err := w.WriteTable("training_set.csv", result.Training)
package exporter
