package domain

// Region names a part of the dashboard that is replaced as a whole.
// The value doubles as the DOM id of the region's container.
type Region string

const (
	RegionStats         Region = "stats"
	RegionApplications  Region = "applications"
	RegionCampaigns     Region = "campaigns"
	RegionSettings      Region = "settings"
	RegionNotifications Region = "notifications"
)

// Regions lists the regions rendered on the dashboard page, in page order.
var Regions = []Region{
	RegionNotifications,
	RegionStats,
	RegionCampaigns,
	RegionApplications,
	RegionSettings,
}
