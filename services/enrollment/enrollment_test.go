package enrollment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"courseapi/models"
	courseModels "courseapi/models/course"
	"courseapi/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type notifyCall struct {
	Event string
	Ctx   map[string]string
	To    string
}

type fakeNotifier struct {
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) Send(eventName string, ctx map[string]string, toEmail string) error {
	f.calls = append(f.calls, notifyCall{Event: eventName, Ctx: ctx, To: toEmail})
	return f.err
}

func newTestService(t *testing.T, notifier Notifier) (*Service, *store.MemCollection, *store.MemCollection, string) {
	t.Helper()
	courses := store.NewMemCollection()
	enrollments := store.NewMemCollection()

	id, err := courses.InsertOne(context.Background(), bson.M{
		"course_title":  "Intro to Databases",
		"enrollers":     0,
		"display_price": bson.M{"amount": float64(100), "currency": "INR"},
	})
	require.NoError(t, err)

	courseID, _ := store.NormalizeIDs(id).(string)
	require.NotEmpty(t, courseID)

	return NewService(courses, enrollments, notifier), courses, enrollments, courseID
}

func TestSelfEnrollSnapshotsPriceAndStatus(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, _, _, courseID := newTestService(t, notifier)

	user := User{ID: "7", Username: "riya", Email: "riya@example.com"}
	res, err := svc.SelfEnroll(context.Background(), user, courseID)
	require.NoError(t, err)

	assert.Equal(t, "7", res.Enrollment["user_id"])
	assert.Equal(t, courseID, res.Enrollment["course_id"])
	assert.Equal(t, courseModels.StatusSelfEnrolled, res.Enrollment["status"])
	assert.EqualValues(t, 100, res.Enrollment["price"])
	assert.NotEmpty(t, res.Enrollment["enrolled_at"])

	assert.EqualValues(t, 1, res.Course["enrollers"])
	members, _ := res.Course["enrolled_users"].(bson.A)
	require.Len(t, members, 1)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, models.EventCourseEnrolled, notifier.calls[0].Event)
	assert.Equal(t, "riya@example.com", notifier.calls[0].To)
	assert.Equal(t, "Intro to Databases", notifier.calls[0].Ctx["course"])
}

func TestEnrollPriceSurvivesLaterCourseEdit(t *testing.T) {
	svc, courses, enrollments, courseID := newTestService(t, nil)
	ctx := context.Background()

	user := User{ID: "7", Username: "riya"}
	res, err := svc.SelfEnroll(ctx, user, courseID)
	require.NoError(t, err)

	course, err := courses.FindByID(ctx, courseID)
	require.NoError(t, err)
	err = courses.UpdateByID(ctx, course["_id"], bson.M{
		"$set": bson.M{"display_price.amount": float64(250)},
	})
	require.NoError(t, err)

	saved, err := enrollments.FindOne(ctx, bson.M{"user_id": "7"})
	require.NoError(t, err)
	assert.EqualValues(t, 100, saved["price"])
	assert.EqualValues(t, 100, res.Enrollment["price"])
}

func TestEnrollRejectsDuplicate(t *testing.T) {
	svc, courses, enrollments, courseID := newTestService(t, nil)
	ctx := context.Background()

	user := User{ID: "7", Username: "riya"}
	_, err := svc.SelfEnroll(ctx, user, courseID)
	require.NoError(t, err)

	_, err = svc.SelfEnroll(ctx, user, courseID)
	var wfErr *WorkflowError
	require.ErrorAs(t, err, &wfErr)
	assert.Equal(t, "already_enrolled", wfErr.Code)

	// No second record and no second counter bump.
	n, err := enrollments.Count(ctx, bson.M{"user_id": "7"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	course, err := courses.FindByID(ctx, courseID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, course["enrollers"])
}

func TestEnrollCounterTracksDistinctUsers(t *testing.T) {
	svc, courses, _, courseID := newTestService(t, nil)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		user := User{ID: fmt.Sprint(i), Username: fmt.Sprintf("user%d", i)}
		_, err := svc.SelfEnroll(ctx, user, courseID)
		require.NoError(t, err)
	}

	course, err := courses.FindByID(ctx, courseID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, course["enrollers"])

	members, _ := course["enrolled_users"].(bson.A)
	require.Len(t, members, 3)
	seen := map[string]bool{}
	for _, m := range members {
		e, _ := m.(bson.M)
		seen[e["user_id"].(string)] = true
	}
	assert.Len(t, seen, 3)
}

func TestEnrollCourseNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)

	_, err := svc.SelfEnroll(context.Background(), User{ID: "7"}, "64b0c8f2a1b2c3d4e5f60718")
	var wfErr *WorkflowError
	require.ErrorAs(t, err, &wfErr)
	assert.Equal(t, "course_not_found", wfErr.Code)
}

func TestEnrollAcceptsPlainStringCourseID(t *testing.T) {
	courses := store.NewMemCollection()
	enrollments := store.NewMemCollection()
	ctx := context.Background()

	// Legacy documents carry plain string ids instead of ObjectIDs.
	_, err := courses.InsertOne(ctx, bson.M{
		"_id":          "legacy-course-42",
		"course_title": "Legacy Import",
	})
	require.NoError(t, err)

	svc := NewService(courses, enrollments, nil)
	res, err := svc.SelfEnroll(ctx, User{ID: "7", Username: "riya"}, "legacy-course-42")
	require.NoError(t, err)
	assert.Equal(t, "legacy-course-42", res.Enrollment["course_id"])
	assert.EqualValues(t, 0, res.Enrollment["price"])
}

func TestEnrollSurvivesCounterUpdateFailure(t *testing.T) {
	svc, courses, enrollments, courseID := newTestService(t, nil)
	courses.FailUpdates = true
	ctx := context.Background()

	res, err := svc.SelfEnroll(ctx, User{ID: "7", Username: "riya"}, courseID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusSelfEnrolled, res.Enrollment["status"])

	// The record stands, only the denormalized counter is stale.
	n, err := enrollments.Count(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	course, err := courses.FindByID(ctx, courseID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, course["enrollers"])
}

func TestEnrollSurvivesNotificationFailure(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	svc, _, enrollments, courseID := newTestService(t, notifier)
	ctx := context.Background()

	_, err := svc.SelfEnroll(ctx, User{ID: "7", Username: "riya", Email: "riya@example.com"}, courseID)
	require.NoError(t, err)

	n, err := enrollments.Count(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, notifier.calls, 1)
}

func TestAssignMultiplePartitionsUsers(t *testing.T) {
	svc, courses, _, courseID := newTestService(t, nil)
	ctx := context.Background()

	// One of the three is already enrolled.
	_, err := svc.SelfEnroll(ctx, User{ID: "2", Username: "existing"}, courseID)
	require.NoError(t, err)

	users := []User{
		{ID: "1", Username: "alice"},
		{ID: "2", Username: "existing"},
		{ID: "3", Username: "bob"},
	}
	res, err := svc.AssignMultiple(ctx, users, courseID)
	require.NoError(t, err)

	assert.Equal(t, courseID, res.CourseID)
	assert.Equal(t, []UserRef{{ID: "1", Username: "alice"}, {ID: "3", Username: "bob"}}, res.Assigned)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "2", res.Skipped[0].ID)
	assert.Equal(t, "already_enrolled", res.Skipped[0].Reason)
	assert.Equal(t, len(users), len(res.Assigned)+len(res.Skipped))

	course, err := courses.FindByID(ctx, courseID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, course["enrollers"])
}

func TestAssignMultipleUsesAssignedStatus(t *testing.T) {
	svc, _, enrollments, courseID := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.AssignMultiple(ctx, []User{{ID: "9", Username: "carol"}}, courseID)
	require.NoError(t, err)

	saved, err := enrollments.FindOne(ctx, bson.M{"user_id": "9"})
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusAssigned, saved["status"])
}

func TestAssignMultipleCourseNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)

	_, err := svc.AssignMultiple(context.Background(), []User{{ID: "1"}}, "missing")
	var wfErr *WorkflowError
	require.ErrorAs(t, err, &wfErr)
	assert.Equal(t, "course_not_found", wfErr.Code)
}
