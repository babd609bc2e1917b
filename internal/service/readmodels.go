package service

import (
	"alcyxob/gymhub/internal/domain"
	"sort"
	"strings"
	"time"
)

// MembershipStatus is derived from an expiry date, never stored.
type MembershipStatus string

const (
	StatusActive       MembershipStatus = "Active"
	StatusExpiringSoon MembershipStatus = "Expiring Soon"
	StatusExpired      MembershipStatus = "Expired"
)

const expiringWindow = 7 * 24 * time.Hour

// MembershipStatusOf: no expiry or expiry <= now is Expired; an expiry within
// seven days is Expiring Soon; anything later is Active.
func MembershipStatusOf(expiry *time.Time, now time.Time) MembershipStatus {
	if expiry == nil || !expiry.After(now) {
		return StatusExpired
	}
	if expiry.Sub(now) <= expiringWindow {
		return StatusExpiringSoon
	}
	return StatusActive
}

type MemberStatusView struct {
	Member   domain.User      `json:"member"`
	Status   MembershipStatus `json:"membershipStatus"`
	DaysLeft int              `json:"daysLeft"`
}

// Members returns the MEMBER users of the snapshot.
func (s *Snapshot) Members() []domain.User {
	return filterList(s.Users, func(u domain.User) bool { return u.IsMember() })
}

func MemberStatuses(s *Snapshot, now time.Time) []MemberStatusView {
	members := s.Members()
	views := make([]MemberStatusView, 0, len(members))
	for _, m := range members {
		v := MemberStatusView{Member: m, Status: MembershipStatusOf(m.ExpiryDate, now)}
		if m.ExpiryDate != nil && m.ExpiryDate.After(now) {
			v.DaysLeft = int(m.ExpiryDate.Sub(now).Hours() / 24)
		}
		views = append(views, v)
	}
	return views
}

func notificationVisibleTo(n domain.Notification, id domain.Identity) bool {
	if n.TargetID == id.UserID {
		return true
	}
	return n.TargetID == domain.MasterTarget && id.Role == domain.RoleMaster
}

// VisibleNotifications returns the caller's notifications, newest first.
func VisibleNotifications(s *Snapshot) []domain.Notification {
	if s.Identity == nil {
		return []domain.Notification{}
	}
	out := filterList(s.Notifications, func(n domain.Notification) bool { return notificationVisibleTo(n, *s.Identity) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func UnreadCount(notifications []domain.Notification) int {
	n := 0
	for _, x := range notifications {
		if !x.Read {
			n++
		}
	}
	return n
}

// AnnouncementsNewestFirst returns a sorted copy.
func AnnouncementsNewestFirst(list []domain.Announcement) []domain.Announcement {
	out := append([]domain.Announcement(nil), list...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ActiveTrainers excludes soft-deleted trainers.
func ActiveTrainers(list []domain.Trainer) []domain.Trainer {
	return filterList(list, func(t domain.Trainer) bool { return t.Status != domain.TrainerDeleted })
}

// FindPlanByCode looks up a workout plan by its routine code, ignoring case.
func FindPlanByCode(plans []domain.WorkoutPlan, code string) (*domain.WorkoutPlan, bool) {
	code = strings.TrimSpace(code)
	for i := range plans {
		if code != "" && strings.EqualFold(plans[i].Code, code) {
			p := plans[i]
			return &p, true
		}
	}
	return nil, false
}

type RevenueSummary struct {
	Total     float64            `json:"total"`
	ThisMonth float64            `json:"thisMonth"`
	ByMonth   map[string]float64 `json:"byMonth"`
	ByMode    map[string]float64 `json:"byMode"`
	Payments  int                `json:"payments"`
}

func Revenue(payments []domain.Payment, now time.Time) RevenueSummary {
	sum := RevenueSummary{ByMonth: map[string]float64{}, ByMode: map[string]float64{}}
	current := now.Format("2006-01")
	for _, p := range payments {
		month := p.Date.Format("2006-01")
		sum.Total += p.Amount
		sum.ByMonth[month] += p.Amount
		mode := p.Mode
		if mode == "" {
			mode = "unknown"
		}
		sum.ByMode[mode] += p.Amount
		if month == current {
			sum.ThisMonth += p.Amount
		}
		sum.Payments++
	}
	return sum
}

type VolumePoint struct {
	Date   string  `json:"date"`
	Volume float64 `json:"volume"`
}

// VolumeByDay sums the user's recorded volume per calendar day, oldest first.
func VolumeByDay(records []domain.WorkoutRecord, userID string) []VolumePoint {
	byDay := map[string]float64{}
	for _, r := range records {
		if r.UserID == userID {
			byDay[r.Date] += r.TotalVolume
		}
	}
	points := make([]VolumePoint, 0, len(byDay))
	for day, v := range byDay {
		points = append(points, VolumePoint{Date: day, Volume: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// History returns the user's workout records, newest first.
func History(records []domain.WorkoutRecord, userID string) []domain.WorkoutRecord {
	out := filterList(records, func(r domain.WorkoutRecord) bool { return r.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndTime.After(out[j].EndTime) })
	return out
}

// Conversation returns the caller's messages with otherID, oldest first.
func Conversation(s *Snapshot, otherID string) []domain.ChatMessage {
	if s.Identity == nil {
		return []domain.ChatMessage{}
	}
	msgs := append([]domain.ChatMessage(nil), s.Conversations[domain.ConversationKey(s.Identity.UserID, otherID)]...)
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs
}

type Dashboard struct {
	TotalMembers   int            `json:"totalMembers"`
	ActiveMembers  int            `json:"activeMembers"`
	ExpiringSoon   int            `json:"expiringSoon"`
	ExpiredMembers int            `json:"expiredMembers"`
	ActiveTrainers int            `json:"activeTrainers"`
	PresentToday   int            `json:"presentToday"`
	Unread         int            `json:"unreadNotifications"`
	Announcements  int            `json:"announcements"`
	Revenue        RevenueSummary `json:"revenue"`
}

// BuildDashboard aggregates the snapshot for the MASTER and TRAINER dashboards.
func BuildDashboard(s *Snapshot, now time.Time) Dashboard {
	d := Dashboard{Revenue: Revenue(s.Payments, now), Announcements: len(s.Announcements)}
	for _, v := range MemberStatuses(s, now) {
		d.TotalMembers++
		switch v.Status {
		case StatusActive:
			d.ActiveMembers++
		case StatusExpiringSoon:
			d.ActiveMembers++
			d.ExpiringSoon++
		case StatusExpired:
			d.ExpiredMembers++
		}
	}
	d.ActiveTrainers = len(filterList(s.Trainers, func(t domain.Trainer) bool { return t.Status == domain.TrainerActive }))
	today := domain.DateKey(now)
	for _, entries := range s.Attendance {
		for _, e := range entries {
			if e.Date == today && e.Status == domain.AttendancePresent {
				d.PresentToday++
			}
		}
	}
	d.Unread = UnreadCount(VisibleNotifications(s))
	return d
}
