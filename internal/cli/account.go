package cli

import (
	"github.com/spf13/cobra"

	"tradedesk/internal/account"
	"tradedesk/internal/models"
)

// addAccountCommands adds registration and login commands.
func addAccountCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRegisterCmd(app))
	rootCmd.AddCommand(newVerifyCmd(app))
	rootCmd.AddCommand(newResendOTPCmd(app))
	rootCmd.AddCommand(newLoginCmd(app))
	rootCmd.AddCommand(newLogoutCmd(app))
	rootCmd.AddCommand(newWhoamiCmd(app))
	rootCmd.AddCommand(newBankCmd(app))
}

func newRegisterCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Open a new account",
		Long: `Open a new paper-trading account.

An OTP is issued against the given contact details; the account is
created once 'tradedesk verify <code>' succeeds.`,
		Example: `  tradedesk register --name "Rahul Verma" --email rahul@example.com \
      --phone 9876543210 --pan ABCDE1234F --password secret123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			phone, _ := cmd.Flags().GetString("phone")
			pan, _ := cmd.Flags().GetString("pan")
			password, _ := cmd.Flags().GetString("password")

			code, err := app.Accounts.Register(account.RegistrationRequest{
				Name:     name,
				Email:    email,
				Phone:    phone,
				PAN:      pan,
				Password: password,
			})
			if err != nil {
				output.Error("Registration failed: %v", err)
				return err
			}
			app.savePendingRegistration()

			// A real brokerage would deliver this out of band; the
			// simulator prints it.
			if output.IsJSON() {
				return output.JSON(map[string]string{"otp": code, "email": email})
			}
			output.Success("OTP sent to %s and %s", email, phone)
			output.Printf("Your OTP: %s\n", code)
			output.Info("Run 'tradedesk verify %s' to activate the account", code)
			return nil
		},
	}

	cmd.Flags().String("name", "", "full name")
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("phone", "", "mobile number")
	cmd.Flags().String("pan", "", "PAN")
	cmd.Flags().String("password", "", "password (min 6 characters)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("phone")
	cmd.MarkFlagRequired("pan")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newVerifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <code>",
		Short: "Verify a pending registration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.Accounts.VerifyRegistration(args[0])
			if err != nil {
				output.Error("Verification failed: %v", err)
				return err
			}
			app.Persist(acct)
			app.clearPendingRegistration()
			if err := app.saveSession(acct.Email); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to save session")
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"email":    acct.Email,
					"verified": true,
				})
			}
			output.Success("Account created for %s", acct.Email)
			output.Printf("Opening balance: %s\n", formatINR(acct.Ledger.Balance()))
			return nil
		},
	}
}

func newResendOTPCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resend-otp",
		Short: "Resend the registration OTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			profile, ok := app.Accounts.Gate().Pending()
			if !ok {
				output.Error("No pending registration")
				return errNoSession()
			}
			code, err := app.Accounts.Gate().Resend(profile)
			if err != nil {
				output.Error("Resend failed: %v", err)
				return err
			}
			app.savePendingRegistration()

			if output.IsJSON() {
				return output.JSON(map[string]string{"otp": code})
			}
			output.Success("New OTP sent to %s", profile.Email)
			output.Printf("Your OTP: %s\n", code)
			return nil
		},
	}
}

func newLoginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			acct, err := app.Accounts.Authenticate(email, password)
			if err != nil {
				output.Error("Login failed: %v", err)
				return err
			}
			if err := app.saveSession(acct.Email); err != nil {
				output.Error("Failed to save session: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"email": acct.Email})
			}
			output.Success("Logged in as %s", acct.Email)
			return nil
		},
	}

	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.clearSession(); err != nil {
				return err
			}
			output.Success("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{
					"name":  acct.Name,
					"email": acct.Email,
					"phone": acct.Phone,
					"pan":   acct.PAN,
				})
			}
			output.Printf("Name:  %s\n", acct.Name)
			output.Printf("Email: %s\n", acct.Email)
			output.Printf("Phone: %s\n", acct.Phone)
			output.Printf("PAN:   %s\n", acct.PAN)
			return nil
		},
	}
}

func newBankCmd(app *App) *cobra.Command {
	bankCmd := &cobra.Command{
		Use:   "bank",
		Short: "Manage linked bank accounts",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Link a bank account",
		Example: `  tradedesk bank add --holder "Rahul Verma" --number 123456789012 \
      --ifsc HDFC0001234 --bank "HDFC Bank"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			holder, _ := cmd.Flags().GetString("holder")
			number, _ := cmd.Flags().GetString("number")
			ifsc, _ := cmd.Flags().GetString("ifsc")
			bank, _ := cmd.Flags().GetString("bank")

			err = app.Accounts.LinkBankAccount(acct.Email, models.BankAccount{
				HolderName:    holder,
				AccountNumber: number,
				IFSC:          ifsc,
				BankName:      bank,
			})
			if err != nil {
				output.Error("Failed to link bank account: %v", err)
				return err
			}
			app.Persist(acct)

			output.Success("Bank account linked")
			return nil
		},
	}
	addCmd.Flags().String("holder", "", "account holder name")
	addCmd.Flags().String("number", "", "account number (9-18 digits)")
	addCmd.Flags().String("ifsc", "", "IFSC code")
	addCmd.Flags().String("bank", "", "bank name")
	addCmd.MarkFlagRequired("holder")
	addCmd.MarkFlagRequired("number")
	addCmd.MarkFlagRequired("ifsc")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List linked bank accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			acct, err := app.currentAccount()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(acct.Banks)
			}
			if len(acct.Banks) == 0 {
				output.Info("No bank accounts linked")
				return nil
			}
			for _, b := range acct.Banks {
				output.Printf("%s  %s  %s  %s\n", b.BankName, maskAccountNumber(b.AccountNumber), b.IFSC, b.HolderName)
			}
			return nil
		},
	}

	bankCmd.AddCommand(addCmd, listCmd)
	return bankCmd
}

func maskAccountNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	masked := make([]byte, len(number)-4)
	for i := range masked {
		masked[i] = 'X'
	}
	return string(masked) + number[len(number)-4:]
}
