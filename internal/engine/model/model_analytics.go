package model

import "time"

const MaxAnalyticsList = 50

// AnalyticsSnapshot is a point-in-time count of activity in one organization.
type AnalyticsSnapshot struct {
	ID                string    `bson:"_id" json:"id"`
	Organization      string    `bson:"collegeId" json:"organization"`
	Timestamp         time.Time `bson:"timestamp" json:"timestamp"`
	TotalAppointments int64     `bson:"totalAppointments" json:"totalAppointments"`
	ForumPostsCount   int64     `bson:"forumPostsCount" json:"forumPostsCount"`
}
