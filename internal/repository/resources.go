package repository

import (
	"pitchside/internal/models"
	"pitchside/internal/query"

	"gorm.io/gorm"
)

// Column whitelists shared by the list specs below.
var (
	baseSortable = map[string]string{
		"id":        "id",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	}
	categoryFilter = query.Filter{Param: "category", Column: "category_id", Kind: query.ID}
	isLiveFilter   = query.Filter{Param: "isLive", Column: "is_live", Kind: query.Bool}
	isActiveFilter = query.Filter{Param: "isActive", Column: "is_active", Kind: query.Bool}
)

func sortable(fields map[string]string) map[string]string {
	out := make(map[string]string, len(baseSortable)+len(fields))
	for k, v := range baseSortable {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// List specs, one per resource.
var (
	CategorySpec = query.Spec{
		SearchColumn: "name",
		Sortable:     sortable(map[string]string{"name": "name", "slug": "slug"}),
		DefaultSort:  "-createdAt",
	}

	StreamSpec = query.Spec{
		SearchColumn: "title",
		Filters:      []query.Filter{categoryFilter, isLiveFilter},
		Sortable: sortable(map[string]string{
			"title":      "title",
			"date":       "date",
			"expiryTime": "expiry_time",
			"isLive":     "is_live",
			"views":      "views",
		}),
		DefaultSort: "-date",
		Populate:    []query.Join{query.CategoryJoin},
	}

	LiveTVSpec = query.Spec{
		SearchColumn: "channel_name",
		Filters:      []query.Filter{categoryFilter, isLiveFilter},
		Sortable: sortable(map[string]string{
			"channelName": "channel_name",
			"isLive":      "is_live",
			"views":       "views",
		}),
		DefaultSort: "-createdAt",
		Populate:    []query.Join{query.CategoryJoin},
	}

	HighlightSpec = query.Spec{
		SearchColumn: "title",
		Filters:      []query.Filter{categoryFilter},
		Sortable: sortable(map[string]string{
			"title":    "title",
			"duration": "duration",
			"views":    "views",
		}),
		DefaultSort: "-createdAt",
		Populate:    []query.Join{query.CategoryJoin},
	}

	AnnouncementSpec = query.Spec{
		SearchColumn: "title",
		Filters:      []query.Filter{isActiveFilter},
		Sortable: sortable(map[string]string{
			"title":      "title",
			"priority":   "priority",
			"isActive":   "is_active",
			"expiryDate": "expiry_date",
		}),
		DefaultSort: "-priority -createdAt",
	}

	AdSpec = query.Spec{
		SearchColumn: "title",
		Filters: []query.Filter{
			{Param: "type", Column: "type", Kind: query.Exact},
			{Param: "position", Column: "position", Kind: query.Exact},
			isActiveFilter,
		},
		Sortable: sortable(map[string]string{
			"title":      "title",
			"type":       "type",
			"position":   "position",
			"isActive":   "is_active",
			"clickCount": "click_count",
			"viewCount":  "view_count",
			"expiryDate": "expiry_date",
		}),
		DefaultSort: "-createdAt",
	}

	SocialLinkSpec = query.Spec{
		SearchColumn: "platform",
		Filters:      []query.Filter{isActiveFilter},
		Sortable: sortable(map[string]string{
			"platform": "platform",
			"order":    "sort_order",
			"isActive": "is_active",
		}),
		DefaultSort: "order",
	}

	BaseURLSpec = query.Spec{
		SearchColumn: "name",
		Filters:      []query.Filter{isActiveFilter},
		Sortable: sortable(map[string]string{
			"name":     "name",
			"order":    "sort_order",
			"isActive": "is_active",
		}),
		DefaultSort: "order",
	}
)

// Resources bundles the data access paths of every content resource.
type Resources struct {
	Categories    *Resource[models.Category]
	Streams       *Resource[models.Stream]
	LiveTV        *Resource[models.LiveTV]
	Highlights    *Resource[models.Highlight]
	Announcements *Resource[models.Announcement]
	Ads           *Resource[models.Ad]
	SocialLinks   *Resource[models.SocialLink]
	BaseURLs      *Resource[models.BaseURL]
}

// NewResources wires every resource to db.
func NewResources(db *gorm.DB) *Resources {
	return &Resources{
		Categories:    NewResource[models.Category](db, "Category", CategorySpec, WithDeleteGuard(CategoryInUse)),
		Streams:       NewResource[models.Stream](db, "Stream", StreamSpec),
		LiveTV:        NewResource[models.LiveTV](db, "Live TV channel", LiveTVSpec),
		Highlights:    NewResource[models.Highlight](db, "Highlight", HighlightSpec),
		Announcements: NewResource[models.Announcement](db, "Announcement", AnnouncementSpec),
		Ads:           NewResource[models.Ad](db, "Ad", AdSpec),
		SocialLinks:   NewResource[models.SocialLink](db, "Social link", SocialLinkSpec),
		BaseURLs:      NewResource[models.BaseURL](db, "Base URL", BaseURLSpec),
	}
}
