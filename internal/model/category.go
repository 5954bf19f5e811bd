package model

// CategoryTag identifies one content category in the classifier's registry.
// Tags are plain strings because they are persisted verbatim as keys of the
// "Data Sent" object in the event log.
//
// A scalar value may legitimately carry several tags at once: category
// rules are independent classifiers, not a partition. The registry is
// versioned implicitly through the classifier's compiled rule table; tags
// are never removed, only added, so stored logs stay readable.
type CategoryTag string

// Personal information categories.
const (
	CategoryPhone    CategoryTag = "phone"
	CategoryOTP      CategoryTag = "otp"
	CategoryPincode  CategoryTag = "pincode"
	CategoryAddress  CategoryTag = "address"
	CategoryCity     CategoryTag = "city"
	CategoryEmail    CategoryTag = "email"
	CategoryIDNumber CategoryTag = "number"
	CategoryDOB      CategoryTag = "dob"
	CategoryGender   CategoryTag = "gender"
	CategoryName     CategoryTag = "name"
	CategoryPassword CategoryTag = "password"
	CategoryLatitude CategoryTag = "latitude"
	CategoryLongitude CategoryTag = "longitude"
	CategoryLocale   CategoryTag = "locale"
	CategoryCountry  CategoryTag = "country"
	CategoryTimezone CategoryTag = "timezone"
)

// Hardware and per-device identifier categories.
const (
	CategoryAndroidID   CategoryTag = "android_id"
	CategoryAdvertiserID CategoryTag = "advertiser_id"
	CategoryAnonymousID CategoryTag = "anonymous_id"
	CategoryMACAddress  CategoryTag = "mac_address"
	CategoryIDFA        CategoryTag = "idfa"
	CategoryUUID        CategoryTag = "uuid"
	CategoryUID         CategoryTag = "uid"
	CategoryAnonID      CategoryTag = "anon_id"
	CategoryAttribution CategoryTag = "attribution"
	CategoryMCCMNC      CategoryTag = "mcc_mnc"
)

// Device and OS description categories.
const (
	CategoryDeviceModel   CategoryTag = "device_model"
	CategoryManufacturer  CategoryTag = "manufacturer"
	CategoryBrand         CategoryTag = "brand"
	CategoryHardware      CategoryTag = "hardware"
	CategoryOSVersion     CategoryTag = "os_version"
	CategorySDKLevel      CategoryTag = "sdk_level"
	CategoryOSBuild       CategoryTag = "os_build"
	CategoryScreenWidth   CategoryTag = "screen_width"
	CategoryScreenHeight  CategoryTag = "screen_height"
	CategoryScreenDensity CategoryTag = "screen_density"
	CategoryRooted        CategoryTag = "rooted"
	CategoryDebuggable    CategoryTag = "debuggable"
)

// Application description categories.
const (
	CategoryPackageName      CategoryTag = "application_package_name"
	CategoryAppVersion       CategoryTag = "app_version"
	CategoryBuildNumber      CategoryTag = "build_number"
	CategoryApplicationBuild CategoryTag = "application_build"
	CategoryInstallSource    CategoryTag = "source_of_install"
	CategoryInstallerPackage CategoryTag = "installer_package"

	CategoryAppTrackingEnabled          CategoryTag = "app_tracking_enabled"
	CategoryApplicationTrackingEnabled  CategoryTag = "application_tracking_enabled"
	CategoryAdvertiserIDCollectionEnabled CategoryTag = "advertiser_id_collection_enabled"
	CategoryAdvertiserTrackingEnabled   CategoryTag = "advertiser_tracking_enabled"
)

// Sensor categories.
const (
	CategoryAccelerometer CategoryTag = "accelerometer"
)

// Checksum-validated categories. These are produced by dedicated rules
// (Luhn validation) rather than the keyword/value table.
const (
	// CategoryIMEI holds 15-digit values found under IMEI-ish keys that
	// pass the Luhn check.
	CategoryIMEI CategoryTag = "imei"

	// CategoryIMEIFalsePositive holds 15-digit values found under IMEI-ish
	// keys that fail the Luhn check. These are kept rather than dropped so
	// the false-positive rate of the IMEI rule can be analyzed offline.
	CategoryIMEIFalsePositive CategoryTag = "imei_false_positive"

	// CategoryCreditCard holds Luhn-valid 13-19 digit numbers that match a
	// known card issuer prefix. Values are stored as "number (network)".
	CategoryCreditCard CategoryTag = "credit_card"
)

// EXIF-derived categories, produced when multipart uploads carry images
// with embedded metadata. These are intentionally not members of any risk
// scoring category; see the risk package.
const (
	CategoryGPSLatitude  CategoryTag = "gps_latitude"
	CategoryGPSLongitude CategoryTag = "gps_longitude"
	CategoryDeviceSerial CategoryTag = "device_serial"
)
