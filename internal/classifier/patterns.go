package classifier

import (
	"regexp"

	"github.com/nao1215/sdksniff/internal/model"
)

// rule is one entry of the category table: a compiled keyword+value
// pattern, plus an optional leading-word exclusion list standing in for
// the negative lookahead that RE2 does not support.
type rule struct {
	// tag is the category recorded on a match.
	tag model.CategoryTag

	// re is the combined key/value pattern, matched against "{key}:{value}".
	// Group 1 captures the value portion.
	re *regexp.Regexp

	// excludeLeading rejects matches whose captured value starts with one
	// of these words. RE2 has no negative lookahead, so the handful of
	// rules that need one filter the capture instead.
	excludeLeading []string
}

// wrapKeywords builds the combined pattern for one category: the key
// keywords, an optional separator run, then the capturable value pattern.
// Quotes are optional on both sides so the same rule matches JSON text,
// form bodies, and raw key=value fragments.
func wrapKeywords(keywords, valueRegex string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:"?\b(?:` + keywords + `)\b"?\s*[:=\- ]*\s*"?(` + valueRegex + `)"?)`)
}

// defaultRules returns the compiled category table.
//
// The table is data-driven on purpose: each category is one row that can
// be unit-tested in isolation, and rows are independent classifiers (a
// value may match several rows). Order does not affect results.
func defaultRules() []rule {
	return []rule{
		{tag: model.CategoryPhone, re: wrapKeywords(
			`(?:phone|mobile|contact|tel|cell)(?:[_\s-]?number|num|no)?|phoneno|us`,
			`(?:\+?\d{1,3}[\s\-]?)?(?:\d{10,15})`,
		)},
		{tag: model.CategoryOTP, re: wrapKeywords(
			`otp|otpno|otp_number|verification[\s\-]?code|login[\s\-]?code|auth[\s\-]?code|(?:^|\b)code(?:\b|$)`,
			`\d{4,8}`,
		)},
		{tag: model.CategoryPincode, re: wrapKeywords(`pincode|postal code|zip`, `\d{6}`)},
		{tag: model.CategoryAddress, re: wrapKeywords(
			`address|addr|home[_\s]?address|street|street[_\s]?address`,
			`[A-Za-z0-9][A-Za-z0-9 ,.\-\/]{5,100}`,
		)},
		{tag: model.CategoryCity, re: wrapKeywords(
			`city|town|district`,
			`\b[A-Z][a-z]{2,}(?: [A-Z][a-z]{2,})*\b`,
		), excludeLeading: []string{"company", "co", "com"}},
		{tag: model.CategoryEmail, re: wrapKeywords(
			`email|e-mail|user email`,
			`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		)},
		{tag: model.CategoryIDNumber, re: wrapKeywords(
			`id number|account number|aadhaar|pan|voter id`,
			`[\dA-Za-z\-]{6,}`,
		)},
		{tag: model.CategoryDOB, re: wrapKeywords(
			`dob|date of birth|birth date|birthday`,
			`\d{1,2}[-/ ]?(?:\d{1,2}|[A-Za-z]+)[-/ ]?\d{2,4}`,
		)},
		{tag: model.CategoryGender, re: wrapKeywords(
			`gender|sex|user_gender|profile_gender`,
			`\b(?:male|female|other|m|f|trans|nonbinary)\b`,
		)},
		{tag: model.CategoryAndroidID, re: wrapKeywords(
			`\b(?:android_id|aid|a_id|androidid|androidId|aId)\b`,
			`[0-9a-fA-F]{16}`,
		)},
		{tag: model.CategoryAdvertiserID, re: wrapKeywords(`advertiser_id|adid`, `[A-Fa-f0-9\-]{36}`)},
		{tag: model.CategoryAnonymousID, re: wrapKeywords(`anonymous_id|anon_id`, `[A-Za-z0-9_\-]{8,64}`)},
		{tag: model.CategoryMACAddress, re: wrapKeywords(
			`mac_address|mac`,
			`(?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}`,
		)},
		{tag: model.CategoryIDFA, re: wrapKeywords(`idfa`, `[A-F0-9\-]{36}`)},
		{tag: model.CategoryUUID, re: wrapKeywords(
			`uuid`,
			`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,
		)},
		{tag: model.CategoryName, re: wrapKeywords(
			`\b(?:user[_\-]?name|account[_\-]?name|profile[_\-]?name|customer[_\-]?name|full[_\-]?name|first[_\-]?name|last[_\-]?name)\b`,
			`\b[A-Z][a-z]{2,}(?: [A-Z][a-z]{2,}){0,2}\b`,
		)},
		{tag: model.CategoryAccelerometer, re: wrapKeywords(
			`accelerometer[_\-]?[xyz]`,
			`-?\d+(?:\.\d+)?(?:E[-+]?\d+)?`,
		)},
		{tag: model.CategoryPassword, re: wrapKeywords(
			`password|pass|passwd|pwd|user_password`,
			`[A-Za-z0-9@#$%^&+=!?.*_-]{4,}`,
		)},
		{tag: model.CategoryLatitude, re: wrapKeywords(`lat|latitude`, `-?\d{1,3}\.\d{4,}`)},
		{tag: model.CategoryLongitude, re: wrapKeywords(`lon|lng|longitude`, `-?\d{1,3}\.\d{4,}`)},
		{tag: model.CategoryDeviceModel, re: wrapKeywords(
			`model|device_model`,
			`[A-Za-z0-9][A-Za-z0-9 _\-]{1,60}`,
		), excludeLeading: []string{"name", "unknown"}},
		{tag: model.CategoryManufacturer, re: wrapKeywords(
			`manufacturer`,
			`[A-Za-z0-9][A-Za-z0-9 _\-]{1,60}`,
		), excludeLeading: []string{"name", "unknown"}},
		{tag: model.CategoryBrand, re: wrapKeywords(
			`brand`,
			`[A-Za-z0-9][A-Za-z0-9 _\-]{1,60}`,
		), excludeLeading: []string{"name", "unknown"}},
		{tag: model.CategoryHardware, re: wrapKeywords(`hardware`, `[A-Za-z0-9_\-]+`)},
		{tag: model.CategoryOSVersion, re: wrapKeywords(
			`\b(?:os_version|android_version|ios_version|osver|os_ver|system_version|sys_version)\b`,
			`(?:[1-9]\d?(?:\.\d{1,3}){0,2})`,
		)},
		{tag: model.CategorySDKLevel, re: wrapKeywords(`sdk|api_level`, `(?:[1-9]\d*)`)},
		{tag: model.CategoryOSBuild, re: wrapKeywords(`osBuild|os_build`, `[A-Za-z0-9\._\-]+`)},
		{tag: model.CategoryPackageName, re: wrapKeywords(
			`package_name|application_package_name|bundle|package`,
			`[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)+`,
		)},
		{tag: model.CategoryAppVersion, re: wrapKeywords(
			`\b(?:app[_\-]?version|application[_\-]?version|version[_\-]?name)\b`,
			`[0-9]+(?:\.[0-9]+){0,3}`,
		)},
		{tag: model.CategoryBuildNumber, re: wrapKeywords(`build|build_number`, `\d+`)},
		{tag: model.CategoryApplicationBuild, re: wrapKeywords(`applicationBuild|app_build`, `\d+`)},
		{tag: model.CategoryInstallSource, re: wrapKeywords(
			`source_of_install|install_source|installer`,
			`[a-zA-Z0-9\._\-]{2,100}`,
		)},
		{tag: model.CategoryLocale, re: wrapKeywords(`locale|language`, `[a-z]{2,3}(?:[_\-][A-Z]{2})?`)},
		{tag: model.CategoryCountry, re: wrapKeywords(`country`, `[A-Z]{2}`)},
		{tag: model.CategoryMCCMNC, re: wrapKeywords(`mccMnc|mcc|mnc`, `\d{3,6}`)},
		{tag: model.CategoryTimezone, re: wrapKeywords(
			`timezone|tz|locale_timezone_offset|timezone_offset`,
			`(?:[A-Z][a-z]+/[A-Z][a-z_]+|[+-]\d{2}:\d{2})`,
		)},
		{tag: model.CategoryScreenWidth, re: wrapKeywords(
			`screen_width|screen_w|width`,
			`(?:3[2-9]\d|[4-9]\d{2}|1\d{3}|2[0-5]\d{2})`,
		)},
		{tag: model.CategoryScreenHeight, re: wrapKeywords(
			`screen_height|screen_h|height`,
			`(?:4\d{2}|[5-9]\d{2}|1\d{3}|2[0-5]\d{2})`,
		)},
		{tag: model.CategoryScreenDensity, re: wrapKeywords(
			`density|dpi|screen_density`,
			`\b(?:120|160|213|240|320|360|480|560|640|xxxhdpi|xxhdpi|xhdpi|hdpi|mdpi)\b`,
		)},
		{tag: model.CategoryAppTrackingEnabled, re: wrapKeywords(
			`application_tracking_enabled|tracking_enabled|limit_ad_tracking`,
			`true|false|0|1`,
		)},
		{tag: model.CategoryRooted, re: wrapKeywords(`rooted|is_rooted|device_rooted`, `true|false`)},
		{tag: model.CategoryDebuggable, re: wrapKeywords(`debuggable|is_debuggable`, `true|false`)},
		{tag: model.CategoryUID, re: wrapKeywords(
			`uid|user_id|unique_id|userid|useridentifier|player_id|device_user_id`,
			`[a-z0-9\-_]{8,64}`,
		)},
		{tag: model.CategoryAnonID, re: wrapKeywords(`anon_id`, `[A-Za-z0-9_\-]{8,64}`)},
		{tag: model.CategoryAttribution, re: wrapKeywords(`attribution`, `[0-9a-fA-F\-]{8,36}`)},
		{tag: model.CategoryApplicationTrackingEnabled, re: wrapKeywords(
			`application_tracking_enabled|app_tracking_enabled|tracking_enabled|limit_ad_tracking`,
			`\s*'?(?:true|false|0|1)'?\s*`,
		)},
		{tag: model.CategoryAdvertiserIDCollectionEnabled, re: wrapKeywords(
			`advertiser_id_collection_enabled`,
			`\s*'?(?:true|false)'?\s*`,
		)},
		{tag: model.CategoryAdvertiserTrackingEnabled, re: wrapKeywords(
			`advertiser_tracking_enabled`,
			`\s*'?(?:true|false)'?\s*`,
		)},
		{tag: model.CategoryInstallerPackage, re: wrapKeywords(`installer_package`, `[a-zA-Z0-9\._\-]+`)},

		// EXIF-derived keys emitted by the decoder for image uploads.
		{tag: model.CategoryGPSLatitude, re: wrapKeywords(`gps[_\s-]?latitude`, `.{1,120}`)},
		{tag: model.CategoryGPSLongitude, re: wrapKeywords(`gps[_\s-]?longitude`, `.{1,120}`)},
		{tag: model.CategoryDeviceSerial, re: wrapKeywords(
			`device[_\s-]?serial|serial[_\s-]?number|camera[_\s-]?serial|body[_\s-]?serial|lens[_\s-]?serial`,
			`[A-Za-z0-9\-]{4,40}`,
		)},
	}
}

// defaultJunkWords is the stoplist of values discarded before any
// categorization. These are UI noise and boolean-ish tokens that keyword
// rules would otherwise latch onto.
var defaultJunkWords = []string{
	"whatsapp", "name", "offer", "no offer", "add to cart", "cart", "button",
	"screen", "page", "activity", "fragment", "event", "register",
	"variation", "control", "experiment", "test",
	"true", "false", "yes", "no", "null", "undefined",
	"userid", "id", "none", "wallet", "handholding", "top", "loyal", "ceo",
}

// allowedNameKeys are key names that explicitly carry person names.
// Short captures under these keys are kept even though the name rule
// normally suppresses sub-2-character tokens.
var allowedNameKeys = []string{
	"user_name", "account_name", "profile_name", "customer_name", "full_name", "name",
}
