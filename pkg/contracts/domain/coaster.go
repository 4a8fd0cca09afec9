// Package domain holds the column contracts of the coaster dataset shared by
// the pipeline, the exporters and the reports.
package domain

// Source column names as they appear in the coaster database CSV header.
const (
	SourceCoasterName      = "coaster_name"
	SourceLocation         = "Location"
	SourceStatus           = "Status"
	SourceManufacturer     = "Manufacturer"
	SourceYearIntroduced   = "year_introduced"
	SourceLatitude         = "latitude"
	SourceLongitude        = "longitude"
	SourceTypeMain         = "Type_Main"
	SourceOpeningDateClean = "opening_date_clean"
	SourceSpeedMPH         = "speed_mph"
	SourceHeightFT         = "height_ft"
	SourceInversionsClean  = "Inversions_clean"
	SourceGforceClean      = "Gforce_clean"
)

// Display column names used after the rename step.
const (
	ColCoasterName      = "Coaster Name"
	ColLocation         = "Location"
	ColStatus           = "Status"
	ColManufacturer     = "Manufacturer"
	ColYearIntroduced   = "Year Introduced"
	ColLatitude         = "Latitude"
	ColLongitude        = "Longitude"
	ColTypeMain         = "Type Main"
	ColOpeningDateClean = "Opening Date Clean"
	ColSpeedMPH         = "Speed MPH"
	ColHeightFT         = "Height FT"
	ColInversionsClean  = "Inversions Clean"
	ColGforceClean      = "Gforce Clean"
	ColDecade           = "Decade"
)

// SourceColumns is the ordered projection applied to the raw CSV.
var SourceColumns = []string{
	SourceCoasterName,
	SourceLocation,
	SourceStatus,
	SourceManufacturer,
	SourceYearIntroduced,
	SourceLatitude,
	SourceLongitude,
	SourceTypeMain,
	SourceOpeningDateClean,
	SourceSpeedMPH,
	SourceHeightFT,
	SourceInversionsClean,
	SourceGforceClean,
}

// RenameMapping maps source names to display names. Columns whose source name
// is already the display name (Location, Status, Manufacturer) are absent.
var RenameMapping = map[string]string{
	SourceCoasterName:      ColCoasterName,
	SourceYearIntroduced:   ColYearIntroduced,
	SourceLatitude:         ColLatitude,
	SourceLongitude:        ColLongitude,
	SourceTypeMain:         ColTypeMain,
	SourceOpeningDateClean: ColOpeningDateClean,
	SourceSpeedMPH:         ColSpeedMPH,
	SourceHeightFT:         ColHeightFT,
	SourceInversionsClean:  ColInversionsClean,
	SourceGforceClean:      ColGforceClean,
}

// NumericSourceColumns must load as numbers. A column that is entirely empty
// is inferred as text by the loader and coerced back.
var NumericSourceColumns = []string{
	SourceYearIntroduced,
	SourceLatitude,
	SourceLongitude,
	SourceSpeedMPH,
	SourceHeightFT,
	SourceInversionsClean,
	SourceGforceClean,
}

// CompositeKey identifies a logically unique coaster record.
var CompositeKey = []string{ColCoasterName, ColLocation, ColOpeningDateClean}

// CoasterKey groups rows for the per-coaster aggregate.
var CoasterKey = []string{ColCoasterName, ColLocation}

// MeanImputedColumns are filled with the column mean.
var MeanImputedColumns = []string{ColLatitude, ColLongitude, ColSpeedMPH, ColHeightFT, ColGforceClean}

// ModeImputedColumns are filled with the most frequent value.
var ModeImputedColumns = []string{ColStatus, ColManufacturer, ColOpeningDateClean}

// FeatureColumns are the numeric features used for correlation and decade trends.
var FeatureColumns = []string{ColYearIntroduced, ColSpeedMPH, ColHeightFT, ColInversionsClean, ColGforceClean}

// TrendColumns are plotted in the decade trend chart.
var TrendColumns = []string{ColSpeedMPH, ColHeightFT, ColInversionsClean, ColGforceClean}

// DisplayColumns returns the column order of a prepared table.
func DisplayColumns() []string {
	names := make([]string, len(SourceColumns))
	for i, src := range SourceColumns {
		if display, ok := RenameMapping[src]; ok {
			names[i] = display
			continue
		}
		names[i] = src
	}
	return names
}
