package middlewares

import (
	"context"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/ventiam/ventiam_backend/config"
	"github.com/ventiam/ventiam_backend/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap your data loaders to inject via middleware
type Loaders struct {
	FinanceAccountLoader *dataloader.Loader[int, *models.FinanceAccount]
	FinanceBillLoader    *dataloader.Loader[int, *models.FinanceBill]
	ConversationLoader   *dataloader.Loader[int, *models.Conversation]
	AgentLoader          *dataloader.Loader[int, *models.Agent]
	HabitLoader          *dataloader.Loader[int, *models.Habit]
	UserTableLoader      *dataloader.Loader[int, *models.UserTable]

	accountBillLoader *dataloader.Loader[int, []*models.FinanceBill]
	habitEntryLoader  *dataloader.Loader[int, []*models.HabitEntry]
	tableColumnLoader *dataloader.Loader[int, []*models.UserTableColumn]
}

func NewLoaders(conn *gorm.DB) *Loaders {
	financeAccountReader := &financeAccountReader{db: conn}
	financeBillReader := &financeBillReader{db: conn}
	conversationReader := &conversationReader{db: conn}
	agentReader := &agentReader{db: conn}
	habitReader := &habitReader{db: conn}
	userTableReader := &userTableReader{db: conn}

	accountBillReader := &accountBillReader{db: conn}
	habitEntryReader := &habitEntryReader{db: conn}
	tableColumnReader := &tableColumnReader{db: conn}

	return &Loaders{
		FinanceAccountLoader: dataloader.NewBatchedLoader(financeAccountReader.getFinanceAccounts, dataloader.WithWait[int, *models.FinanceAccount](time.Millisecond)),
		FinanceBillLoader:    dataloader.NewBatchedLoader(financeBillReader.getFinanceBills, dataloader.WithWait[int, *models.FinanceBill](time.Millisecond)),
		ConversationLoader:   dataloader.NewBatchedLoader(conversationReader.getConversations, dataloader.WithWait[int, *models.Conversation](time.Millisecond)),
		AgentLoader:          dataloader.NewBatchedLoader(agentReader.getAgents, dataloader.WithWait[int, *models.Agent](time.Millisecond)),
		HabitLoader:          dataloader.NewBatchedLoader(habitReader.getHabits, dataloader.WithWait[int, *models.Habit](time.Millisecond)),
		UserTableLoader:      dataloader.NewBatchedLoader(userTableReader.getUserTables, dataloader.WithWait[int, *models.UserTable](time.Millisecond)),

		accountBillLoader: dataloader.NewBatchedLoader(accountBillReader.GetAccountBills, dataloader.WithWait[int, []*models.FinanceBill](time.Millisecond)),
		habitEntryLoader:  dataloader.NewBatchedLoader(habitEntryReader.GetHabitEntries, dataloader.WithWait[int, []*models.HabitEntry](time.Millisecond)),
		tableColumnLoader: dataloader.NewBatchedLoader(tableColumnReader.GetTableColumns, dataloader.WithWait[int, []*models.UserTableColumn](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// turns results from db into dataloader results
// (T must be a struct)
func generateLoaderResults[T models.Data](results []T, ids []int) []*dataloader.Result[*T] {
	// generate resultMap from results
	resultMap := make(map[int]T)
	var resultZero T
	resultMap[0] = resultZero.GetDefault(0).(T)
	for _, result := range results {
		resultMap[result.GetId()] = result
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		data := resultMap[id]
		if reflect.ValueOf(data).IsZero() {
			data = data.GetDefault(id).(T)
		}
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: &data})
	}
	return loaderResults
}

// T must be struct
// each id has many related results
func generateLoaderArrayResults[T models.RelatedData](results []T, referenceIds []int) (loaderResults []*dataloader.Result[[]*T]) {
	resultMap := make(map[int][]*T)
	for _, result := range results {
		// creating a new variable every turn, to avoid pointing to the adddress of result
		copy := result
		resultMap[result.GetReferenceId()] = append(resultMap[result.GetReferenceId()], &copy)
	}
	for _, id := range referenceIds {
		resultArray := resultMap[id]
		loaderResults = append(loaderResults, &dataloader.Result[[]*T]{Data: resultArray})
	}
	return loaderResults
}
