package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/loantrack/internal/models"
)

func TestLoanHandlerLifecycle(t *testing.T) {
	fixture := newHandlerFixture(t)
	handler := NewLoanHandler(fixture.loans, fixture.users)

	student := fixture.createUser(t, "51000001", models.RoleStudent)
	staff := fixture.createUser(t, "51000002", models.RoleStaff)
	item := fixture.createEquipment(t, "EQ-5101")

	// Student submits a request
	recorder := performJSON(t, handler.Request, student.ID, requestLoanRequest{
		EquipmentID: item.ID,
		EndsAt:      time.Now().Add(72 * time.Hour),
		Reason:      "Physics lab practical",
	}, nil, "")
	require.Equal(t, http.StatusCreated, recorder.Code)

	loan := decodeData[models.Loan](t, decodeResponse(t, recorder))
	require.Equal(t, models.LoanRequested, loan.Status)

	params := gin.Params{gin.Param{Key: "id", Value: loan.ID}}

	// Staff approves
	recorder = performJSON(t, handler.Approve, staff.ID, processLoanRequest{
		Notes:        "Collect from the lab desk",
		ConditionOut: "Good",
	}, params, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	approved := decodeData[models.Loan](t, decodeResponse(t, recorder))
	require.Equal(t, models.LoanApproved, approved.Status)
	require.NotNil(t, approved.ApproverID)

	// Approving twice conflicts
	recorder = performJSON(t, handler.Approve, staff.ID, processLoanRequest{}, params, "")
	require.Equal(t, http.StatusConflict, recorder.Code)

	// Staff records the return
	recorder = performJSON(t, handler.Return, staff.ID, returnLoanRequest{
		ConditionIn: "Good",
	}, params, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	returned := decodeData[models.Loan](t, decodeResponse(t, recorder))
	require.Equal(t, models.LoanReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)
}

func TestLoanHandlerBorrowerReturnsOwnLoan(t *testing.T) {
	fixture := newHandlerFixture(t)
	handler := NewLoanHandler(fixture.loans, fixture.users)

	borrower := fixture.createUser(t, "51000030", models.RoleStudent)
	other := fixture.createUser(t, "51000031", models.RoleStudent)
	staff := fixture.createUser(t, "51000032", models.RoleStaff)
	item := fixture.createEquipment(t, "EQ-5130")

	recorder := performJSON(t, handler.Request, borrower.ID, requestLoanRequest{
		EquipmentID: item.ID,
		EndsAt:      time.Now().Add(48 * time.Hour),
		Reason:      "Weekend shoot",
	}, nil, "")
	require.Equal(t, http.StatusCreated, recorder.Code)

	loan := decodeData[models.Loan](t, decodeResponse(t, recorder))
	params := gin.Params{gin.Param{Key: "id", Value: loan.ID}}

	recorder = performJSON(t, handler.Approve, staff.ID, processLoanRequest{}, params, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	// Another student cannot return someone else's loan
	recorder = performJSON(t, handler.Return, other.ID, returnLoanRequest{}, params, "")
	require.Equal(t, http.StatusForbidden, recorder.Code)

	// The borrower records their own return
	recorder = performJSON(t, handler.Return, borrower.ID, returnLoanRequest{
		ConditionIn: "Good",
	}, params, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	returned := decodeData[models.Loan](t, decodeResponse(t, recorder))
	require.Equal(t, models.LoanReturned, returned.Status)
}

func TestLoanHandlerListScoping(t *testing.T) {
	fixture := newHandlerFixture(t)
	handler := NewLoanHandler(fixture.loans, fixture.users)

	studentA := fixture.createUser(t, "51000010", models.RoleStudent)
	studentB := fixture.createUser(t, "51000011", models.RoleStudent)
	staff := fixture.createUser(t, "51000012", models.RoleStaff)
	itemA := fixture.createEquipment(t, "EQ-5110")
	itemB := fixture.createEquipment(t, "EQ-5111")

	for _, tc := range []struct {
		borrower  *models.User
		equipment *models.Equipment
	}{
		{studentA, itemA},
		{studentB, itemB},
	} {
		recorder := performJSON(t, handler.Request, tc.borrower.ID, requestLoanRequest{
			EquipmentID: tc.equipment.ID,
			EndsAt:      time.Now().Add(48 * time.Hour),
			Reason:      "Course work",
		}, nil, "")
		require.Equal(t, http.StatusCreated, recorder.Code)
	}

	// Students only ever see their own loans, even when filtering by another borrower
	recorder := performJSON(t, handler.List, studentA.ID, nil, nil, "borrower_id="+studentB.ID)
	require.Equal(t, http.StatusOK, recorder.Code)

	mine := decodeData[[]models.Loan](t, decodeResponse(t, recorder))
	require.Len(t, mine, 1)
	require.Equal(t, studentA.ID, mine[0].BorrowerID)

	// Staff may scope to any borrower
	recorder = performJSON(t, handler.List, staff.ID, nil, nil, "borrower_id="+studentB.ID)
	require.Equal(t, http.StatusOK, recorder.Code)

	theirs := decodeData[[]models.Loan](t, decodeResponse(t, recorder))
	require.Len(t, theirs, 1)
	require.Equal(t, studentB.ID, theirs[0].BorrowerID)
}

func TestLoanHandlerGetDeniesOtherStudents(t *testing.T) {
	fixture := newHandlerFixture(t)
	handler := NewLoanHandler(fixture.loans, fixture.users)

	owner := fixture.createUser(t, "51000020", models.RoleStudent)
	other := fixture.createUser(t, "51000021", models.RoleStudent)
	item := fixture.createEquipment(t, "EQ-5120")

	recorder := performJSON(t, handler.Request, owner.ID, requestLoanRequest{
		EquipmentID: item.ID,
		EndsAt:      time.Now().Add(24 * time.Hour),
		Reason:      "Presentation",
	}, nil, "")
	require.Equal(t, http.StatusCreated, recorder.Code)
	loan := decodeData[models.Loan](t, decodeResponse(t, recorder))

	params := gin.Params{gin.Param{Key: "id", Value: loan.ID}}

	require.Equal(t, http.StatusOK, performJSON(t, handler.Get, owner.ID, nil, params, "").Code)
	require.Equal(t, http.StatusForbidden, performJSON(t, handler.Get, other.ID, nil, params, "").Code)
}

func TestLoanHandlerCancel(t *testing.T) {
	fixture := newHandlerFixture(t)
	handler := NewLoanHandler(fixture.loans, fixture.users)

	owner := fixture.createUser(t, "51000030", models.RoleStudent)
	other := fixture.createUser(t, "51000031", models.RoleStudent)
	item := fixture.createEquipment(t, "EQ-5130")

	recorder := performJSON(t, handler.Request, owner.ID, requestLoanRequest{
		EquipmentID: item.ID,
		EndsAt:      time.Now().Add(24 * time.Hour),
		Reason:      "Workshop",
	}, nil, "")
	require.Equal(t, http.StatusCreated, recorder.Code)
	loan := decodeData[models.Loan](t, decodeResponse(t, recorder))

	params := gin.Params{gin.Param{Key: "id", Value: loan.ID}}

	// Another student cannot withdraw someone else's request
	require.Equal(t, http.StatusForbidden, performJSON(t, handler.Cancel, other.ID, nil, params, "").Code)

	recorder = performJSON(t, handler.Cancel, owner.ID, nil, params, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	cancelled := decodeData[models.Loan](t, decodeResponse(t, recorder))
	require.Equal(t, models.LoanRejected, cancelled.Status)
}
