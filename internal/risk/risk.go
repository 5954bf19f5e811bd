package risk

import (
	"math"
	"strings"

	"github.com/nao1215/sdksniff/internal/model"
)

// Category is one risk scoring bucket.
type Category string

// The five scoring buckets.
const (
	CategoryDeviceInfo   Category = "device_info"
	CategoryAppInfo      Category = "app_info"
	CategorySensorInfo   Category = "sensor_info"
	CategoryUniqueIDs    Category = "unique_ids"
	CategoryPersonalInfo Category = "personal_info"
)

// Categories lists the buckets in a fixed presentation order, most
// invasive first.
var Categories = []Category{
	CategoryPersonalInfo,
	CategoryUniqueIDs,
	CategoryAppInfo,
	CategoryDeviceInfo,
	CategorySensorInfo,
}

// categoryMembers maps each bucket to the finding tags it scores.
//
// The membership is deliberately narrower than the classifier's tag
// registry: checksum buckets (imei, imei_false_positive) and EXIF-derived
// tags are reported in the log but excluded here, so experimental
// detectors never move the headline score until their false-positive
// rate is understood.
var categoryMembers = map[Category]map[model.CategoryTag]struct{}{
	CategoryDeviceInfo: toSet(
		model.CategoryDeviceModel, model.CategoryManufacturer, model.CategoryBrand,
		model.CategoryHardware, model.CategoryOSVersion, model.CategorySDKLevel,
		model.CategoryOSBuild, model.CategoryScreenWidth, model.CategoryScreenHeight,
		model.CategoryScreenDensity, model.CategoryRooted, model.CategoryDebuggable,
	),
	CategoryAppInfo: toSet(
		model.CategoryPackageName, model.CategoryAppVersion, model.CategoryBuildNumber,
		model.CategoryApplicationBuild, model.CategoryInstallSource, model.CategoryInstallerPackage,
		model.CategoryAppTrackingEnabled, model.CategoryApplicationTrackingEnabled,
		model.CategoryAdvertiserIDCollectionEnabled, model.CategoryAdvertiserTrackingEnabled,
	),
	CategorySensorInfo: toSet(
		model.CategoryAccelerometer,
	),
	CategoryUniqueIDs: toSet(
		model.CategoryAndroidID, model.CategoryAdvertiserID, model.CategoryAnonymousID,
		model.CategoryMACAddress, model.CategoryIDFA, model.CategoryUUID,
		model.CategoryUID, model.CategoryAttribution,
	),
	CategoryPersonalInfo: toSet(
		model.CategoryPhone, model.CategoryOTP, model.CategoryPincode,
		model.CategoryAddress, model.CategoryCity, model.CategoryEmail,
		model.CategoryIDNumber, model.CategoryDOB, model.CategoryGender,
		model.CategoryName, model.CategoryPassword, model.CategoryCreditCard,
		model.CategoryLatitude, model.CategoryLongitude, model.CategoryLocale,
		model.CategoryCountry, model.CategoryTimezone,
	),
}

// categoryWeights holds each bucket's share of the final score.
var categoryWeights = map[Category]float64{
	CategoryDeviceInfo:   0.10,
	CategoryAppInfo:      0.25,
	CategorySensorInfo:   0.05,
	CategoryUniqueIDs:    0.20,
	CategoryPersonalInfo: 0.40,
}

func toSet(tags ...model.CategoryTag) map[model.CategoryTag]struct{} {
	set := make(map[model.CategoryTag]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

// CategoryScore is one bucket's contribution to the final score.
type CategoryScore struct {
	// Count is the number of tag observations attributed to the bucket.
	Count int `json:"count"`

	// Subscore is the log-compressed score on a 0-10 scale, rounded to
	// two decimals.
	Subscore float64 `json:"subscore"`

	// Weight is the bucket's share of the final score.
	Weight float64 `json:"weight"`
}

// Report is the computed risk assessment for a detection log.
type Report struct {
	// FinalScore is the weighted score on a 0-100 scale, rounded to one
	// decimal.
	FinalScore float64 `json:"final_score"` //nolint:tagliatelle // persisted report schema is fixed

	// Categories holds the per-bucket breakdown.
	Categories map[Category]CategoryScore `json:"categories"`

	// TotalEntries is the number of log entries scored.
	TotalEntries int `json:"total_entries"` //nolint:tagliatelle // persisted report schema is fixed
}

// Weight returns the scoring weight of the bucket, zero for unknown
// buckets.
func Weight(c Category) float64 {
	return categoryWeights[c]
}

// Compute scores a detection log.
//
// Each entry contributes one count per finding tag (not per distinct
// value): an entry leaking three email addresses counts once toward
// personal_info, which keeps a single chatty SDK from dominating the
// scale. Entries without structured findings fall back to substring
// matching over their raw content so hand-edited logs still score.
func Compute(entries []model.LogEntry) Report {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}

	for _, entry := range entries {
		if entry.Findings != nil {
			for _, tag := range entry.Findings.Categories() {
				for _, c := range Categories {
					if _, ok := categoryMembers[c][tag]; ok {
						counts[c]++
					}
				}
			}
			continue
		}
		tallyLegacy(entry.LegacyData(), counts)
	}

	maxCount := 0
	for _, count := range counts {
		if count > maxCount {
			maxCount = count
		}
	}

	var weighted, totalWeight float64
	scores := make(map[Category]CategoryScore, len(Categories))
	for _, c := range Categories {
		sub := subscore(counts[c], maxCount)
		weighted += categoryWeights[c] * sub
		totalWeight += categoryWeights[c]
		scores[c] = CategoryScore{
			Count:    counts[c],
			Subscore: round2(sub),
			Weight:   categoryWeights[c],
		}
	}

	final := (weighted / totalWeight) * 10.0
	final = math.Max(0.0, math.Min(100.0, final))

	return Report{
		FinalScore:   round1(final),
		Categories:   scores,
		TotalEntries: len(entries),
	}
}

// tallyLegacy counts member tags appearing as substrings of the entry's
// raw content. Every occurrence of a member name counts separately, even
// when one name contains another.
func tallyLegacy(raw string, counts map[Category]int) {
	if raw == "" {
		return
	}
	lowered := strings.ToLower(raw)
	for _, c := range Categories {
		for tag := range categoryMembers[c] {
			if strings.Contains(lowered, string(tag)) {
				counts[c]++
			}
		}
	}
}

// subscore compresses a raw count onto a 0-10 scale relative to the
// busiest bucket. The logarithm rewards breadth over volume: doubling a
// count moves the subscore far less than lighting up a new bucket.
func subscore(count, maxCount int) float64 {
	if count <= 0 || maxCount <= 0 {
		return 0.0
	}
	s := (math.Log(float64(count)+1) / math.Log(float64(maxCount)+1)) * 10.0
	return math.Min(10.0, s)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
