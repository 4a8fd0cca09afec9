// Package dataprocessing implements the cleaning stages of the coaster
// pipeline on top of the immutable table.Table.
//
// # Stages
//
//  1. Loader: LoadFile / LoadCSV read delimited text with gota type inference
//  2. Selector: SelectColumns, RenameColumns, ParseDateColumn and Prepare
//  3. Imputer: mean fill for numeric columns, mode fill for categorical ones
//  4. Deduplicator: DropDuplicates and the two-stage Deduplicate
//  5. Aggregator: GroupBy with Max, Min, Mean, Sum and Count
//  6. Derived features: Decade and AddDecadeColumn
//
// Pipeline.Run executes the stages in that order through an
// operations.Manager, so every stage is logged, traced and measured.
//
// # Usage
//
//	pipeline := dataprocessing.NewPipeline(logger, tracer, dataprocessing.Options{})
//	result, err := pipeline.Run(ctx, "coaster_db.csv")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Cleaned.Len())
//
// # Error Handling
//
// Every failure is an *errors.AppError (IO, PARSING, SCHEMA, IMPUTATION or
// VALUE), possibly wrapped with the stage that produced it. No stage retries
// or recovers; the first error ends the run.
package dataprocessing
