package cli

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/alextreichler/shoppingmall/internal/models"
	"github.com/alextreichler/shoppingmall/internal/store"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var username, password, fullName string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the schema and the default admin account",
		Long: `Apply all schema migrations and make sure the admin account exists.

Both steps are idempotent: an existing admin keeps its password.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.NewStore(rootOpts.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer s.Close()

			if err := s.InitSchema(); err != nil {
				return fmt.Errorf("init schema: %w", err)
			}
			created, err := s.EnsureAdmin(cmd.Context(), username, password, fullName)
			if err != nil {
				return err
			}
			result := map[string]any{"db": rootOpts.DBPath, "admin": username, "admin_created": created}
			return emit(cmd.OutOrStdout(), rootOpts, result, func(w io.Writer) {
				if created {
					fmt.Fprintf(w, "Database %s initialized, admin '%s' created.\n", rootOpts.DBPath, username)
				} else {
					fmt.Fprintf(w, "Database %s initialized, admin '%s' already exists.\n", rootOpts.DBPath, username)
				}
			})
		},
	}

	cmd.Flags().StringVar(&username, "admin-username", envOr("ADMIN_USERNAME", "admin"), "admin username")
	cmd.Flags().StringVar(&password, "admin-password", envOr("ADMIN_PASSWORD", "admin"), "admin password")
	cmd.Flags().StringVar(&fullName, "admin-full-name", envOr("ADMIN_FULL_NAME", "Admin User"), "admin full name")

	return cmd
}

// NewAddUserCommand creates the add-user command.
func NewAddUserCommand(rootOpts *RootOptions) *cobra.Command {
	var nu store.NewUser
	var address, paymentInfo string

	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Register a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("address") {
				nu.Address = &address
			}
			if cmd.Flags().Changed("payment-info") {
				nu.PaymentInfo = &paymentInfo
			}

			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			user, err := s.RegisterUser(cmd.Context(), nu)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), rootOpts, user, func(w io.Writer) {
				fmt.Fprintf(w, "User '%s' created successfully (role %s).\n", user.Username, user.Role)
			})
		},
	}

	cmd.Flags().StringVar(&nu.Username, "username", "", "username for the new user")
	cmd.Flags().StringVar(&nu.Password, "password", "", "password for the new user")
	cmd.Flags().StringVar(&nu.Role, "role", string(models.RoleUser), "role (admin|user)")
	cmd.Flags().StringVar(&nu.FullName, "full-name", "", "full name")
	cmd.Flags().StringVar(&address, "address", "", "delivery address")
	cmd.Flags().StringVar(&paymentInfo, "payment-info", "", "payment descriptor")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("full-name")

	return cmd
}

// NewAddProductCommand creates the add-product command.
func NewAddProductCommand(rootOpts *RootOptions) *cobra.Command {
	var name, category, price, thumbnailURL string

	cmd := &cobra.Command{
		Use:   "add-product",
		Short: "Add a product to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", price, err)
			}

			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			product, err := s.AddProduct(cmd.Context(), name, category, p, thumbnailURL)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), rootOpts, product, func(w io.Writer) {
				fmt.Fprintf(w, "Product #%d '%s' added at %s.\n", product.ID, product.Name, product.Price)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringVar(&category, "category", "", "product category")
	cmd.Flags().StringVar(&price, "price", "", "price, e.g. 9.99")
	cmd.Flags().StringVar(&thumbnailURL, "thumbnail-url", "", "thumbnail URL or path")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("price")

	return cmd
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print purchase history",
		Long:  "Print the purchases of one user, or of every user when --username is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			views := []models.AdminPurchaseView{}
			if username == "" {
				views, err = s.GetAllPurchaseHistory(cmd.Context())
				if err != nil {
					return err
				}
			} else {
				history, err := s.GetPurchaseHistory(cmd.Context(), username)
				if err != nil {
					return err
				}
				for _, v := range history {
					views = append(views, models.AdminPurchaseView{PurchaseView: v, BuyerUsername: username})
				}
			}

			return emit(cmd.OutOrStdout(), rootOpts, views, func(w io.Writer) {
				if len(views) == 0 {
					fmt.Fprintln(w, "No purchases.")
					return
				}
				for _, v := range views {
					fmt.Fprintf(w, "%s  %-12s  %-20s  %8s  %s\n",
						v.PurchaseTime.Format("2006-01-02 15:04:05"), v.BuyerUsername, v.ProductName, v.ProductPrice, v.BuyerAddress)
				}
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "only show this user's purchases")

	return cmd
}
