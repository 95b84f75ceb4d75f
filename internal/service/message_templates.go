package service

import "fmt"

func healthAssessmentMessage(name string) string {
	return fmt.Sprintf(`Hi %s! Welcome aboard.

Your health assessment is ready in the Assessments tab. It takes about ten minutes and helps your coach tailor everything that follows.`, name)
}

func stressCardMessage(name string) string {
	return fmt.Sprintf(`Hi %s, your Stress Card has arrived.

It walks through what drives your stress day to day and a few simple resets to try this week.`, name)
}

func sleepCardMessage(name string) string {
	return fmt.Sprintf(`Hi %s, your Sleep Card is ready.

Take a look before bed tonight. Your coach is putting together your personal action plan next.`, name)
}

func cardSentMessage(name, cardTitle string) string {
	return fmt.Sprintf(`Hi %s, your coach has reviewed and sent your %s. Open it from your Assessments tab.`, name, cardTitle)
}

func notificationSubject(appName, title string) string {
	return fmt.Sprintf("%s: %s", appName, title)
}
