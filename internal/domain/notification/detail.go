package notification

import (
	"strings"
)

// SchoolOfficePhone is the main office number quoted across the portal.
const SchoolOfficePhone = "(555) 123-4567"

// SchoolWebsite is the public site referenced from fallback content.
const SchoolWebsite = "www.gatewayprep.edu"

// detailContent holds long-form bodies keyed by notification title.
// Bodies use a small markup: "**Heading**" lines and "- item" bullets.
var detailContent = map[string]string{
	"Parent-Teacher Conferences": `We're excited to announce that spring parent-teacher conferences are now available for scheduling!

**When:** March 15-17, 2024
**Time:** 3:00 PM - 8:00 PM daily
**Location:** Individual classrooms

**How to Schedule:**
1. Log into the parent portal
2. Select your student
3. Choose available time slots with each teacher
4. Confirm your appointments

**What to Expect:**
- 15-minute sessions with each teacher
- Discussion of academic progress and goals
- Review of upcoming projects and assignments
- Opportunity to address any concerns

**Preparation Tips:**
- Review your student's recent grades and assignments
- Prepare any questions about curriculum or classroom expectations
- Bring a notepad to jot down important information

We look forward to meeting with you to discuss your child's progress and success at Gateway College Prep!

If you have any questions about scheduling or need technical assistance, please contact the main office at (555) 123-4567.`,
	"Lunch Menu Update": `We have some exciting updates to our lunch program this week!

**New Menu Items:**
- Fresh Mediterranean wraps with hummus and vegetables
- Grilled chicken Caesar salad bowls
- Vegetarian chili with cornbread
- Seasonal fruit parfaits with granola

**This Week's Schedule:**
- Monday: Pizza Monday with whole wheat crust options
- Tuesday: Taco Tuesday with black bean alternatives
- Wednesday: Mediterranean Wednesday (new!)
- Thursday: Comfort Food Thursday - mac and cheese
- Friday: Fresh Friday - salad bar and wraps

**Allergen Information:**
All new menu items are clearly labeled with allergen information. Students with dietary restrictions should speak with our cafeteria staff.

**Payment Reminders:**
- Lunch accounts can be managed online through the parent portal
- Low balance alerts are sent when accounts reach $10
- Free and reduced lunch applications are available in the main office

For nutrition information or dietary accommodations, contact our food service coordinator at food@gatewayprep.edu.`,
	"School Closure Alert": `**IMPORTANT WEATHER UPDATE**

Due to the severe weather conditions forecasted for tomorrow, Gateway College Preparatory School will dismiss early.

**Early Dismissal Schedule:**
- High School (Grades 9-12): 1:00 PM
- Middle School (Grades 6-8): 1:15 PM
- Elementary (Grades K-5): 1:30 PM

**Transportation Changes:**
- All bus routes will run on the early dismissal schedule
- After-school activities and sports practices are CANCELLED
- Extended day programs are CANCELLED

**Safety Measures:**
- All exterior doors will be secured by 2:00 PM
- Custodial staff will treat walkways and parking areas
- Emergency contact information should be up to date

**Communication:**
- Additional updates will be sent via SchoolMessenger
- Check our website and social media for the latest information
- Local news stations will be notified of our early dismissal

**Important Reminders:**
- Ensure your child has appropriate weather gear
- Arrange early pickup if needed
- Update emergency contacts if they have changed

Stay safe, Gator families! We will resume normal operations once weather conditions improve.

For questions, contact the main office at (555) 123-4567.`,
}

// Detail returns the long-form body for a notification. Titles without
// curated content get a templated body built from the message.
func Detail(n Notification) string {
	if body, ok := detailContent[n.Title]; ok {
		return body
	}

	var b strings.Builder
	b.WriteString(n.Message)
	b.WriteString("\n\nFor more information about this notification, please contact the school office at ")
	b.WriteString(SchoolOfficePhone)
	b.WriteString(" or visit our website at ")
	b.WriteString(SchoolWebsite)
	b.WriteString(".\n\nThank you,\nGateway College Preparatory School Administration")
	return b.String()
}
