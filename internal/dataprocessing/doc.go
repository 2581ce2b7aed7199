// Package dataprocessing turns the raw crime statistics sources into a
// single supervised-learning table.
//
// # Architecture
//
// Every stage takes a Table and returns a new one:
//
//  1. Parser: reads CSV or XLSX sources into RawTables and checks their schema
//  2. Aggregator: sums measurements per (area, year, subgroup) and pivots the subgroup into columns
//  3. Merger: outer-joins the aggregated sources on (area, year)
//  4. GapFiller: forward then backward fills each area's history
//  5. BuildLags: appends the previous year's value of every column
//  6. Finalize: removes duplicate and empty columns and rows without a target
//
// Pipeline wires the stages together, logs each one and records metrics:
//
//	p := dataprocessing.NewPipeline("Victims_of_Rape_Total", metrics, logger)
//	result, err := p.Build(ctx, specs)
//	if err != nil {
//	    return err
//	}
//	training := result.Training
//
// # Data Flow
//
//	RawTable → Aggregate → Merge → Fill → BuildLags → Finalize
//
// # Missing Values
//
// Missing cells hold NaN (see Missing and IsMissing). A cell that cannot be
// parsed as a number is missing rather than an error; a year that cannot be
// parsed, or an absent key or measurement column, fails with
// errors.ErrSchemaMismatch.
//
// # Keys
//
// Areas are matched verbatim. "Delhi" and "delhi " are different areas.
package dataprocessing
