package routes

import (
	"github.com/gin-gonic/gin"

	"go-postgres-procurement/controllers"
	"go-postgres-procurement/middlewares"
)

func SetupRoutes(r *gin.Engine) {

	api := r.Group("/api")
	{

		// ================= ADMIN (elevated role) =================
		admin := api.Group("/admin")
		{
			admin.POST("/login", controllers.AdminLogin)

			adminAuth := admin.Group("/", middlewares.AdminAuth())

			material := adminAuth.Group("/materials")
			{
				material.GET("/", controllers.GetAllMaterials)
				material.GET("/:id", controllers.GetMaterialByID)
				material.POST("/", controllers.CreateMaterial)
				material.PUT("/:id", controllers.UpdateMaterial)
				material.DELETE("/:id", controllers.DeleteMaterial)
			}

			vendor := adminAuth.Group("/vendors")
			{
				vendor.GET("/", controllers.GetAllVendors)
				vendor.GET("/:id", controllers.GetVendorByID)
				vendor.POST("/", controllers.CreateVendor)
				vendor.PUT("/:id", controllers.UpdateVendor)
				vendor.DELETE("/:id", controllers.DeleteVendor)
			}

			batch := adminAuth.Group("/batches")
			{
				batch.GET("/", controllers.GetAllBatches)
				batch.POST("/", controllers.CreateBatch)
				batch.GET("/:id/recipe", controllers.GetBatchRecipe)
				batch.PUT("/:id/recipe", controllers.SetBatchRecipe)
				batch.GET("/:id/material-cost", controllers.BatchMaterialCost)
			}

			requests := adminAuth.Group("/requests")
			{
				requests.GET("/", controllers.AdminListRequests)
				requests.POST("/:id/approve", controllers.ApproveRequest)
				requests.POST("/:id/reject", controllers.RejectRequest)
				requests.DELETE("/:id", controllers.AdminDeleteRequest)
			}

			orders := adminAuth.Group("/orders")
			{
				orders.GET("/orderable", controllers.ListOrderableRequests)
				orders.GET("/", controllers.ListOrders)
				orders.GET("/:id", controllers.GetOrderByID)
				orders.POST("/", controllers.CreateOrder)
				orders.PUT("/:id/items/:itemId", controllers.UpdateOrderItem)
				orders.PUT("/:id/quotation", controllers.SetOrderQuotation)
				orders.POST("/:id/approve", controllers.ApproveOrder)
				orders.DELETE("/:id", controllers.DeleteOrder)
				orders.POST("/:id/payments", controllers.RecordPayment)
				orders.GET("/:id/payments", controllers.PaymentHistory)
			}

			receipts := adminAuth.Group("/receipts")
			{
				receipts.GET("/open/:poId", controllers.OpenReceipt)
				receipts.POST("/", controllers.SaveReceipt)
				receipts.GET("/", controllers.ListReceipts)
				receipts.GET("/:id", controllers.GetReceiptByID)
				receipts.POST("/:id/items/:itemId/replacement", controllers.ConfirmReplacement)
			}

			adminAuth.GET("/replacements/pending", controllers.ListPendingReplacements)

			stock := adminAuth.Group("/stock")
			{
				stock.GET("/:materialId", controllers.StockOnHand)
				stock.GET("/:materialId/ledger", controllers.LedgerByMaterial)
				stock.POST("/adjustments", controllers.PostAdjustment)
			}
		}

		// ================= USER (requester/operator) =================
		user := api.Group("/user")
		{
			user.POST("/login", controllers.UserLogin)

			userAuth := user.Group("/", middlewares.UserAuth())
			{
				userAuth.GET("/gap", controllers.GapAnalyze)

				requests := userAuth.Group("/requests")
				{
					requests.GET("/", controllers.MyRequests)
					requests.POST("/", controllers.GapSubmit)
					requests.PUT("/:id", controllers.UpdateRequest)
					requests.DELETE("/:id", controllers.DeleteRequest)
				}

				userAuth.POST("/batches/:id/consumption", controllers.CreateConsumption)
				userAuth.GET("/stock/:materialId", controllers.StockOnHand)
			}
		}
	}
}
